package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is the maximum lifetime of a stored idempotent response.
	Lifetime time.Duration

	// KeepResponseHeaders is a list of headers kept from the original response.
	// By default, all headers are kept.
	KeepResponseHeaders []string

	keepResponseHeadersMap map[string]struct{}

	// Storage holds the responses keyed by idempotency key.
	Storage fiber.Storage

	// RedSync serializes concurrent requests carrying the same key.
	RedSync *redsync.Redsync
}

type idempotencyResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IdempotencyKey returns the validated idempotency key of the request, or "" if the client sent none.
func IdempotencyKey(c *fiber.Ctx) string {
	key, _ := c.Locals(constant.IdempotencyKeyHeader).(string)
	return key
}

// Idempotency replays the stored response of a previous successful request with the same
// Idempotency-Key header. Requests without the header pass through untouched.
func Idempotency(config *IdempotencyConfig) fiber.Handler {
	config.keepResponseHeadersMap = make(map[string]struct{})
	for _, header := range config.KeepResponseHeaders {
		config.keepResponseHeadersMap[strings.ToLower(header)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		key := c.Get(constant.IdempotencyKeyHeader)
		if key == "" {
			return c.Next()
		}

		if err := rekuest.Validate.Var(key, "max=128,printascii,excludesall= "); err != nil {
			return apierr.ErrInvalidReq.Msg("invalid idempotency key: at most %d printable characters without spaces are allowed", constant.IdempotencyKeyLengthLimit)
		}
		c.Locals(constant.IdempotencyKeyHeader, key)

		if exist, err := replayStored(c, config, key); exist {
			return err
		}

		mutex := config.RedSync.NewMutex("mutex:idempotency-request:"+key,
			redsync.WithExpiry(time.Minute),
			redsync.WithTries(5),
			redsync.WithRetryDelay(time.Millisecond*250))
		if err := mutex.LockContext(c.UserContext()); err != nil {
			log.Err(err).
				Str("evt.name", "http.idempotency.lock.failed").
				Str("key", key).
				Msg("failed to lock idempotency key")
			return apierr.ErrInternalError.Msg("idempotency key is locked by another request; retry with backoff")
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				log.Err(err).
					Str("evt.name", "http.idempotency.unlock.failed").
					Str("key", key).
					Msg("failed to unlock idempotency key")
			}
		}()

		// another request may have finished while we were waiting for the lock
		if exist, err := replayStored(c, config, key); exist {
			return err
		}

		if err := c.Next(); err != nil {
			return err
		}

		b, err := marshalResponse(c, config)
		if err != nil {
			log.Error().
				Str("evt.name", "http.idempotency.response.marshal.failed").
				Err(err).
				Msg("failed to marshal response; not saving it")
			return nil
		}
		if err := config.Storage.Set(key, b, config.Lifetime); err != nil {
			log.Error().
				Str("evt.name", "http.idempotency.response.save.failed").
				Err(err).
				Msg("failed to save idempotent response")
			return nil
		}
		c.Set(constant.IdempotencyHeader, "saved")
		return nil
	}
}

func marshalResponse(c *fiber.Ctx, conf *IdempotencyConfig) ([]byte, error) {
	response := idempotencyResponse{
		StatusCode: c.Response().StatusCode(),
		Headers:    make(map[string]string),
		Body:       c.Response().Body(),
	}
	c.Response().Header.VisitAll(func(k, v []byte) {
		name := string(k)
		if conf.KeepResponseHeaders != nil {
			if _, ok := conf.keepResponseHeadersMap[strings.ToLower(name)]; !ok {
				return
			}
		}
		response.Headers[name] = string(v)
	})
	return msgpack.Marshal(response)
}

func replayStored(c *fiber.Ctx, conf *IdempotencyConfig, key string) (bool, error) {
	b, err := conf.Storage.Get(key)
	if err != nil || b == nil {
		return false, nil
	}

	var response idempotencyResponse
	if err := msgpack.Unmarshal(b, &response); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stored idempotent response is unreadable; executing request")
		return false, nil
	}

	c.Status(response.StatusCode)
	for header, value := range response.Headers {
		c.Set(header, value)
	}
	c.Set(constant.IdempotencyHeader, "hit")
	return true, c.Send(response.Body)
}
