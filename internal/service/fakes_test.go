package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/model"
	pkgcache "github.com/shopfloor-stats/backend/internal/pkg/cache"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/util/shiftclock"
)

var errBackend = errors.New("backend unavailable")

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		ConfigSpec: appconfig.ConfigSpec{
			QueryTimeout:       time.Second * 5,
			DashboardCacheTTL:  time.Minute,
			ReferenceCacheTTL:  time.Minute,
			GanttMaxDays:       7,
			SideEffectAttempts: 3,
			SectorRoles: appconfig.SectorRoleMap{
				appconfig.SectorRoleExtrusion:     "Extrusão",
				appconfig.SectorRoleThermoforming: "Termoformagem",
			},
		},
	}
}

type memEntries struct {
	mu        sync.Mutex
	rows      map[string]*model.ProductionEntry
	byKey     map[string]string
	overlapFn func() error
	rangeHook func()
	// afterRange runs once the range query has taken its snapshot
	afterRange func()
	rangeCall  int
}

func newMemEntries(rows ...*model.ProductionEntry) *memEntries {
	m := &memEntries{rows: map[string]*model.ProductionEntry{}, byKey: map[string]string{}}
	for _, r := range rows {
		m.rows[r.EntryID] = r
	}
	return m
}

func (m *memEntries) sorted(keep func(*model.ProductionEntry) bool) []*model.ProductionEntry {
	out := []*model.ProductionEntry{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out
}

func (m *memEntries) GetEntries(ctx context.Context) ([]*model.ProductionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*model.ProductionEntry) bool { return true }), nil
}

func (m *memEntries) GetEntriesByDate(ctx context.Context, date string) ([]*model.ProductionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *model.ProductionEntry) bool { return r.Date == date }), nil
}

func (m *memEntries) GetEntriesInRange(ctx context.Context, start, end string) ([]*model.ProductionEntry, error) {
	m.mu.Lock()
	m.rangeCall++
	hook := m.rangeHook
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	rows := m.sorted(func(r *model.ProductionEntry) bool { return r.Date >= start && r.Date <= end })
	after := m.afterRange
	m.mu.Unlock()
	if after != nil {
		after()
	}
	return rows, nil
}

func (m *memEntries) GetEntryByID(ctx context.Context, id string) (*model.ProductionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, apierr.ErrNotFound
	}
	return r, nil
}

func (m *memEntries) GetEntryByIdempotencyKey(ctx context.Context, key string) (*model.ProductionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil, apierr.ErrNotFound
	}
	return m.rows[id], nil
}

func (m *memEntries) setRangeHook(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rangeHook = hook
}

func (m *memEntries) setAfterRange(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterRange = hook
}

func (m *memEntries) rangeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rangeCall
}

func (m *memEntries) GetOverlapCandidates(ctx context.Context, machineID, date string, isDowntime bool, excludeID string) ([]*model.ProductionEntry, error) {
	if m.overlapFn != nil {
		if err := m.overlapFn(); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *model.ProductionEntry) bool {
		_, hasEnd := shiftclock.ParseClock(r.EndTime.String)
		return r.MachineID == machineID && r.Date == date && r.IsDowntime() == isDowntime &&
			r.EntryID != excludeID && hasEnd
	}), nil
}

func (m *memEntries) CreateEntry(ctx context.Context, row *model.ProductionEntry) (*model.ProductionEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row.IdempotencyKey.Valid {
		if id, ok := m.byKey[row.IdempotencyKey.String]; ok {
			return m.rows[id], false, nil
		}
		m.byKey[row.IdempotencyKey.String] = row.EntryID
	}
	row.CreatedAt = time.Now()
	m.rows[row.EntryID] = row
	return row, true, nil
}

func (m *memEntries) UpdateEntry(ctx context.Context, row *model.ProductionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[row.EntryID]; !ok {
		return apierr.ErrNotFound
	}
	m.rows[row.EntryID] = row
	return nil
}

func (m *memEntries) DeleteEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apierr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memMovements struct {
	mu       sync.Mutex
	byEntry  map[string][]*model.MaterialMovement
	failures int
	calls    int
}

func newMemMovements() *memMovements {
	return &memMovements{byEntry: map[string][]*model.MaterialMovement{}}
}

func (m *memMovements) CreateMovements(ctx context.Context, movements []*model.MaterialMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return errBackend
	}
next:
	for _, mv := range movements {
		for _, have := range m.byEntry[mv.EntryID] {
			if have.IdempotencyKey == mv.IdempotencyKey && have.Material == mv.Material {
				continue next
			}
		}
		m.byEntry[mv.EntryID] = append(m.byEntry[mv.EntryID], mv)
	}
	return nil
}

func (m *memMovements) DeleteMovementsByEntryID(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEntry, entryID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.EntryChangedEvent
}

func (p *recordingPublisher) PublishEntryChanged(ctx context.Context, event *model.EntryChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type recordingInvalidator struct {
	mu    sync.Mutex
	dates []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, date string) (int, error) {
	r.mu.Lock()
	r.dates = append(r.dates, date)
	r.mu.Unlock()
	return 1, nil
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dates...)
}

func fixedFetch[T any](v []*T, err error) func(ctx context.Context) ([]*T, error) {
	return func(ctx context.Context) ([]*T, error) { return v, err }
}

func testReferenceService(conf *appconfig.Config) *Reference {
	return &Reference{
		Config: conf,
		Fetchers: ReferenceFetchers{
			Products: fixedFetch([]*model.Product{
				{ProductCode: "P1", Name: "Pote 500ml", NetWeight: 0.01},
			}, nil),
			Machines: fixedFetch([]*model.Machine{
				{MachineID: "EXT-01", Name: "Extrusora 1", SectorID: "S1", Active: true},
				{MachineID: "TF-01", Name: "Termoformadora 1", SectorID: "S2", Active: true},
			}, nil),
			Operators:     fixedFetch([]*model.Operator{}, nil),
			DowntimeTypes: fixedFetch([]*model.DowntimeType{{DowntimeTypeID: "D1", Description: "Setup"}}, nil),
			Sectors: fixedFetch([]*model.Sector{
				{SectorID: "S1", Name: "Extrusão"},
				{SectorID: "S2", Name: "Termoformagem"},
			}, nil),
			WorkShifts: fixedFetch([]*model.WorkShift{}, nil),
		},
		Caches: ReferenceCaches{
			Products:      pkgcache.NewSingular[[]*model.Product]("products"),
			Machines:      pkgcache.NewSingular[[]*model.Machine]("machines"),
			Operators:     pkgcache.NewSingular[[]*model.Operator]("operators"),
			DowntimeTypes: pkgcache.NewSingular[[]*model.DowntimeType]("downtimeTypes"),
			Sectors:       pkgcache.NewSingular[[]*model.Sector]("sectors"),
			WorkShifts:    pkgcache.NewSingular[[]*model.WorkShift]("workShifts"),
		},
	}
}

const (
	timeoutShort = time.Second * 2
	tick         = time.Millisecond * 5
)
