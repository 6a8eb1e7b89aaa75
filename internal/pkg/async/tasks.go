package async

import (
	"strings"
	"sync"

	"golang.org/x/exp/constraints"
)

type Errors struct {
	E []error
}

var _ error = (*Errors)(nil)

func (e Errors) Wrapped() error {
	if len(e.E) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	var sb strings.Builder
	l := len(e.E)
	for i, err := range e.E {
		sb.WriteString(err.Error())
		if i < l-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// Map runs f over src with at most concurrencyLimit calls in flight. Results keep the order
// of src; the results of failed calls are left out. A limit of 0 or less runs everything at once. All calls run even if some fail.
func Map[T any, D any](src []T, concurrencyLimit int, f func(T) (D, error)) ([]D, error) {
	if len(src) == 0 {
		return []D{}, nil
	}

	if concurrencyLimit <= 0 {
		concurrencyLimit = len(src)
	}
	concurrencyLimit = clamp(concurrencyLimit, 1, len(src))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		limiter = make(chan struct{}, concurrencyLimit)
		results = make([]D, len(src))
		failed  = make([]bool, len(src))
		errs    = Errors{}
	)

	wg.Add(len(src))
	for i, element := range src {
		limiter <- struct{}{}
		go func(i int, el T) {
			defer func() {
				<-limiter
				wg.Done()
			}()

			r, err := f(el)
			if err != nil {
				mu.Lock()
				errs.E = append(errs.E, err)
				failed[i] = true
				mu.Unlock()
				return
			}
			results[i] = r
		}(i, element)
	}
	wg.Wait()

	out := make([]D, 0, len(src))
	for i, r := range results {
		if !failed[i] {
			out = append(out, r)
		}
	}
	return out, errs.Wrapped()
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
