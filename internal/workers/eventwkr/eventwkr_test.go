package eventwkr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfloor-stats/backend/internal/model"
)

type recordingInvalidator struct {
	dates []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, date string) (int, error) {
	r.dates = append(r.dates, date)
	return 1, nil
}

func TestConsumeInvalidatesEventDate(t *testing.T) {
	inv := &recordingInvalidator{}
	w := &Worker{invalidator: inv}

	n, err := w.Consume(context.Background(), &model.EntryChangedEvent{EntryID: "E1", Date: "2024-03-01", Action: model.EntryActionCreated})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.Consume(context.Background(), &model.EntryChangedEvent{EntryID: "E2"})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []string{"2024-03-01"}, inv.dates)
}

func TestConsumeInvalidatesPreviousDateOfMovedEntry(t *testing.T) {
	inv := &recordingInvalidator{}
	w := &Worker{invalidator: inv}

	n, err := w.Consume(context.Background(), &model.EntryChangedEvent{
		EntryID:      "E1",
		Date:         "2024-03-02",
		PreviousDate: "2024-03-01",
		Action:       model.EntryActionUpdated,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"2024-03-02", "2024-03-01"}, inv.dates)
}
