package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func TestParseProductionMetaWeakNumbers(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`{"bobbin_weight": 12.5}`, 12.5},
		{`{"bobbin_weight": "12,5"}`, 12.5},
		{`{"bobbin_weight": "12.5"}`, 12.5},
		{`{"bobbin_weight": "1.234,5"}`, 1234.5},
		{`{"bobbin_weight": "abc"}`, 0},
		{`{"bobbin_weight": "NaN"}`, 0},
		{`{"bobbin_weight": null}`, 0},
		{`{"bobbin_weight": true}`, 0},
		{`{}`, 0},
		{``, 0},
		{`not json`, 0},
	}
	for _, c := range cases {
		got := ParseProductionMeta([]byte(c.raw)).BobbinWeight
		assert.False(t, math.IsNaN(got), c.raw)
		assert.Equal(t, c.want, got, c.raw)
	}
}

func TestParseProductionMetaExtrusion(t *testing.T) {
	m := ParseProductionMeta([]byte(`{
		"measuredWeight": "0,25",
		"is_draft": "true",
		"extrusion": {
			"refile": "3,5",
			"borra": 1,
			"mix": [{"material": "PEBD", "percentage": 70}, {"name": "PELBD", "percentage": "30"}],
			"additives": [{"material": "Pigmento", "kg": "0,8"}]
		}
	}`))

	assert.Equal(t, 0.25, m.MeasuredWeight)
	assert.True(t, m.IsDraft)
	require.NotNil(t, m.Extrusion)
	assert.Equal(t, 3.5, m.Refile())
	assert.Equal(t, 1.0, m.Borra())
	assert.Equal(t, []MixComponent{{Material: "PEBD", Percentage: 70}, {Material: "PELBD", Percentage: 30}}, m.Extrusion.Mix)
	assert.Equal(t, []Additive{{Material: "Pigmento", Kg: 0.8}}, m.Extrusion.Additives)

	assert.Zero(t, ParseProductionMeta([]byte(`{}`)).Refile())
}

func TestDecodeEntryDiscriminant(t *testing.T) {
	prod := DecodeEntry(&ProductionEntry{
		EntryID:         "01",
		Date:            "2024-03-01T00:00:00Z",
		StartTime:       "06:00",
		EndTime:         null.StringFrom("08:00"),
		ProductCode:     null.StringFrom("P-1"),
		QtyOK:           100,
		DowntimeTypeID:  null.StringFrom("stray"),
		DowntimeMinutes: 0,
	})
	p, ok := prod.(*Production)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", p.Date)
	assert.Equal(t, "P-1", p.ProductCode)
	assert.Equal(t, "production", p.Kind())

	stop := DecodeEntry(&ProductionEntry{
		EntryID:         "02",
		StartTime:       "08:00",
		ProductCode:     null.StringFrom("P-1"),
		QtyOK:           5,
		DowntimeMinutes: 30,
		DowntimeTypeID:  null.StringFrom("SETUP"),
		MetaData:        []byte(`{"long_stop": true, "notes": "troca de bobina"}`),
	})
	d, ok := stop.(*Downtime)
	require.True(t, ok)
	assert.Equal(t, 30, d.Minutes)
	assert.Equal(t, "SETUP", d.DowntimeTypeID)
	assert.True(t, d.IsLongStop())
	assert.Equal(t, "troca de bobina", d.Meta.Notes)

	row, err := d.Encode()
	require.NoError(t, err)
	assert.False(t, row.ProductCode.Valid)
	assert.Zero(t, row.QtyOK)
	assert.True(t, row.IsDowntime())
}
