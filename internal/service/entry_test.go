package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/model/types"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/pkg/latest"
)

func newTestEntryService(entries *memEntries, movements *memMovements) (*Entry, *recordingPublisher) {
	conf := testConfig()
	pub := &recordingPublisher{}
	return &Entry{
		Config:     conf,
		Entries:    entries,
		Movements:  movements,
		Events:     pub,
		Reference:  testReferenceService(conf),
		Tracker:    latest.New(),
		retryDelay: time.Millisecond,
	}, pub
}

func productionRequest(start, end string) *types.EntryRequest {
	return &types.EntryRequest{
		FragmentMachineDate: types.FragmentMachineDate{MachineID: "EXT-01", Date: "2024-03-01"},
		Kind:                "production",
		OperatorID:          "OP1",
		Shift:               "Manhã",
		StartTime:           start,
		EndTime:             end,
		ProductCode:         "P1",
		QtyOK:               100,
		QtyDefect:           2,
		MetaData:            []byte(`{"bobbin_weight":"200","extrusion":{"refile":"1,5","mix":[{"material":"PP","percentage":80},{"name":"PE","percent":"20"}],"additives":[{"material":"Masterbatch","kg":2}]}}`),
	}
}

func existingRow(id, start, end string, downtimeMinutes int) *model.ProductionEntry {
	return &model.ProductionEntry{
		EntryID:         id,
		Date:            "2024-03-01",
		MachineID:       "EXT-01",
		OperatorID:      "OP1",
		Shift:           "Manhã",
		StartTime:       start,
		EndTime:         null.NewString(end, end != ""),
		DowntimeMinutes: downtimeMinutes,
		CreatedAt:       time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRegisterNewEntryWritesMovements(t *testing.T) {
	entries, movements := newMemEntries(), newMemMovements()
	s, pub := newTestEntryService(entries, movements)

	out, err := s.Register(context.Background(), productionRequest("06:00", "10:00"), "", "key-1")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterStatusApplied, out.Status)
	assert.Len(t, out.EntryID, 26)

	row, err := entries.GetEntryByID(context.Background(), out.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "key-1", row.IdempotencyKey.String)

	kg := map[string]float64{}
	for _, mv := range movements.byEntry[out.EntryID] {
		kg[mv.Material] = mv.QuantityKg
		assert.Equal(t, out.EntryID, mv.IdempotencyKey)
	}
	assert.InDelta(t, -160, kg["PP"], 1e-9)
	assert.InDelta(t, -40, kg["PE"], 1e-9)
	assert.InDelta(t, -2, kg["Masterbatch"], 1e-9)

	assert.Equal(t, []string{model.EntryActionCreated}, pub.actions())
}

func TestRegisterReplaysSameIdempotencyKey(t *testing.T) {
	entries, movements := newMemEntries(), newMemMovements()
	s, _ := newTestEntryService(entries, movements)
	ctx := context.Background()

	first, err := s.Register(ctx, productionRequest("06:00", "10:00"), "", "key-1")
	require.NoError(t, err)

	second, err := s.Register(ctx, productionRequest("06:00", "10:00"), "", "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, model.RegisterStatusReplayed, second.Status)
	all, _ := entries.GetEntries(ctx)
	assert.Len(t, all, 1)
	assert.Len(t, movements.byEntry[first.EntryID], 3)
}

func TestRegisterRejectsOverlap(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "12:00", 0))
	s, pub := newTestEntryService(entries, newMemMovements())

	_, err := s.Register(context.Background(), productionRequest("10:00", "14:00"), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierr.ErrTimeConflict))

	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	require.NotNil(t, apiErr.Extras)
	conflict := (*apiErr.Extras)["conflict"].(types.OverlapConflict)
	assert.Equal(t, "E1", conflict.EntryID)
	assert.Empty(t, pub.actions())
}

func TestRegisterAdjacentIntervalsDoNotConflict(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "10:00", 0))
	s, _ := newTestEntryService(entries, newMemMovements())

	_, err := s.Register(context.Background(), productionRequest("10:00", "12:00"), "", "")
	assert.NoError(t, err)
}

func TestRegisterEditExcludesItself(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "12:00", 0))
	s, pub := newTestEntryService(entries, newMemMovements())

	out, err := s.Register(context.Background(), productionRequest("09:00", "12:00"), "E1", "")
	require.NoError(t, err)
	assert.Equal(t, "E1", out.EntryID)

	row, _ := entries.GetEntryByID(context.Background(), "E1")
	assert.Equal(t, "09:00", row.StartTime)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), row.CreatedAt)
	assert.Equal(t, []string{model.EntryActionUpdated}, pub.actions())
}

func TestRegisterOverlapCheckFailsOpen(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "12:00", 0))
	entries.overlapFn = func() error { return errBackend }
	s, _ := newTestEntryService(entries, newMemMovements())

	out, err := s.Register(context.Background(), productionRequest("10:00", "14:00"), "", "")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterStatusApplied, out.Status)
}

func TestRegisterLongStopSkipsOverlap(t *testing.T) {
	entries := newMemEntries(existingRow("D1", "08:00", "12:00", 240))
	s, _ := newTestEntryService(entries, newMemMovements())

	req := &types.EntryRequest{
		FragmentMachineDate: types.FragmentMachineDate{MachineID: "EXT-01", Date: "2024-03-01"},
		Kind:                "downtime",
		OperatorID:          "OP1",
		Shift:               "Manhã",
		StartTime:           "09:00",
		DowntimeMinutes:     600,
		DowntimeTypeID:      "D1",
		LongStop:            true,
	}
	out, err := s.Register(context.Background(), req, "", "")
	require.NoError(t, err)

	row, _ := entries.GetEntryByID(context.Background(), out.EntryID)
	assert.False(t, row.EndTime.Valid)
	assert.Equal(t, 600, row.DowntimeMinutes)
}

func TestRegisterRetriesSideEffect(t *testing.T) {
	entries, movements := newMemEntries(), newMemMovements()
	movements.failures = 2
	s, _ := newTestEntryService(entries, movements)

	out, err := s.Register(context.Background(), productionRequest("06:00", "10:00"), "", "")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterStatusApplied, out.Status)
	assert.Equal(t, 3, movements.calls)
	assert.Len(t, movements.byEntry[out.EntryID], 3)
}

func TestRegisterCompensatesNewEntry(t *testing.T) {
	entries, movements := newMemEntries(), newMemMovements()
	movements.failures = -1
	s, pub := newTestEntryService(entries, movements)

	_, err := s.Register(context.Background(), productionRequest("06:00", "10:00"), "", "key-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierr.ErrInternalError))

	all, _ := entries.GetEntries(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, pub.actions())
}

func TestRegisterEditSideEffectUncertain(t *testing.T) {
	entries, movements := newMemEntries(existingRow("E1", "06:00", "10:00", 0)), newMemMovements()
	movements.failures = -1
	s, pub := newTestEntryService(entries, movements)

	out, err := s.Register(context.Background(), productionRequest("06:00", "11:00"), "E1", "")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterStatusSideEffectUncertain, out.Status)

	row, _ := entries.GetEntryByID(context.Background(), "E1")
	assert.Equal(t, "11:00", row.EndTime.String)
	assert.Equal(t, []string{model.EntryActionUpdated}, pub.actions())
}

func TestDeleteRemovesMovements(t *testing.T) {
	entries, movements := newMemEntries(), newMemMovements()
	s, pub := newTestEntryService(entries, movements)
	ctx := context.Background()

	out, err := s.Register(ctx, productionRequest("06:00", "10:00"), "", "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, out.EntryID))

	assert.Empty(t, movements.byEntry[out.EntryID])
	_, err = entries.GetEntryByID(ctx, out.EntryID)
	assert.True(t, errors.Is(err, apierr.ErrNotFound))
	assert.Equal(t, []string{model.EntryActionCreated, model.EntryActionDeleted}, pub.actions())

	assert.True(t, errors.Is(s.Delete(ctx, out.EntryID), apierr.ErrNotFound))
}

func TestCheckTimeOverlapOpenEnded(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "12:00", 0))
	s, _ := newTestEntryService(entries, newMemMovements())

	assert.Nil(t, s.CheckTimeOverlap(context.Background(), "EXT-01", "2024-03-01", "09:00", "", false, ""))
	assert.NotNil(t, s.CheckTimeOverlap(context.Background(), "EXT-01", "2024-03-01", "09:00", "10:00", false, ""))
	assert.Nil(t, s.CheckTimeOverlap(context.Background(), "EXT-01", "2024-03-01", "09:00", "10:00", true, ""))
	assert.Nil(t, s.CheckTimeOverlap(context.Background(), "EXT-01", "2024-03-01", "09:00", "10:00", false, "E1"))
}

func TestBuildEntryDowntimeMinutesFromClock(t *testing.T) {
	e, err := BuildEntry(&types.EntryRequest{
		FragmentMachineDate: types.FragmentMachineDate{MachineID: "EXT-01", Date: "2024-03-01"},
		Kind:                "downtime",
		StartTime:           "23:30",
		EndTime:             "00:15",
		DowntimeTypeID:      "D1",
	})
	require.NoError(t, err)
	assert.Equal(t, 45, e.(*model.Downtime).Minutes)

	_, err = BuildEntry(&types.EntryRequest{
		Kind:      "downtime",
		StartTime: "08:00",
		EndTime:   "08:00",
	})
	assert.True(t, errors.Is(err, apierr.ErrInvalidReq))
}

func TestListGroupsSuperseded(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "08:00", "12:00", 0))
	s, _ := newTestEntryService(entries, newMemMovements())

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	entries.setRangeHook(func() {
		select {
		case started <- struct{}{}:
			<-release
		default:
		}
	})

	q := &types.GroupQuery{FragmentDateRange: types.FragmentDateRange{Start: "2024-03-01", End: "2024-03-01"}}
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.ListGroups(context.Background(), "tab-1", q)
		firstErr <- err
	}()
	<-started

	entries.setRangeHook(nil)
	groups, err := s.ListGroups(context.Background(), "tab-1", q)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	close(release)
	assert.True(t, errors.Is(<-firstErr, apierr.ErrSuperseded))
}

func TestTranslateViewError(t *testing.T) {
	assert.NoError(t, translateViewError(nil, "groups"))
	assert.True(t, errors.Is(translateViewError(latest.ErrSuperseded, "groups"), apierr.ErrSuperseded))
	assert.True(t, errors.Is(translateViewError(errors.Wrap(context.DeadlineExceeded, "query"), "dashboard"), apierr.ErrQueryTimeout))
	assert.True(t, errors.Is(translateViewError(context.Canceled, "dashboard"), apierr.ErrCanceled))

	other := errors.New("boom")
	assert.Equal(t, other, translateViewError(other, "groups"))
}

func TestRegisterRejectsOverlapWithNightInterval(t *testing.T) {
	entries := newMemEntries(existingRow("E1", "22:00", "02:00", 0))
	s, _ := newTestEntryService(entries, newMemMovements())

	_, err := s.Register(context.Background(), productionRequest("23:00", "23:30"), "", "")
	assert.True(t, errors.Is(err, apierr.ErrTimeConflict))

	_, err = s.Register(context.Background(), productionRequest("02:00", "04:00"), "", "")
	assert.NoError(t, err)
}
