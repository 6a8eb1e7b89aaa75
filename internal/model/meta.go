package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ProductionMeta is the typed metadata of a production entry. Absent or malformed
// numbers are 0.
type ProductionMeta struct {
	MeasuredWeight float64        `json:"measuredWeight,omitempty"`
	BobbinWeight   float64        `json:"bobbin_weight,omitempty"`
	CycleTime      float64        `json:"cycle_time,omitempty"`
	Extrusion      *ExtrusionMeta `json:"extrusion,omitempty"`
	IsDraft        bool           `json:"is_draft,omitempty"`
}

type ExtrusionMeta struct {
	Refile    float64        `json:"refile"`
	Borra     float64        `json:"borra"`
	Mix       []MixComponent `json:"mix,omitempty"`
	Additives []Additive     `json:"additives,omitempty"`
}

type MixComponent struct {
	Material   string  `json:"material"`
	Percentage float64 `json:"percentage"`
}

type Additive struct {
	Material string  `json:"material"`
	Kg       float64 `json:"kg"`
}

type DowntimeMeta struct {
	LongStop bool   `json:"long_stop,omitempty"`
	IsDraft  bool   `json:"is_draft,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func ParseProductionMeta(raw []byte) ProductionMeta {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return ProductionMeta{}
	}
	r := gjson.ParseBytes(raw)
	m := ProductionMeta{
		MeasuredWeight: WeakFloat(r.Get("measuredWeight")),
		BobbinWeight:   WeakFloat(r.Get("bobbin_weight")),
		CycleTime:      WeakFloat(r.Get("cycle_time")),
		IsDraft:        weakBool(r.Get("is_draft")),
	}
	if ext := r.Get("extrusion"); ext.IsObject() {
		e := &ExtrusionMeta{
			Refile: WeakFloat(ext.Get("refile")),
			Borra:  WeakFloat(ext.Get("borra")),
		}
		ext.Get("mix").ForEach(func(_, v gjson.Result) bool {
			e.Mix = append(e.Mix, MixComponent{
				Material:   firstString(v, "material", "name"),
				Percentage: WeakFloat(firstOf(v, "percentage", "percent")),
			})
			return true
		})
		ext.Get("additives").ForEach(func(_, v gjson.Result) bool {
			e.Additives = append(e.Additives, Additive{
				Material: firstString(v, "material", "name"),
				Kg:       WeakFloat(firstOf(v, "kg", "quantity")),
			})
			return true
		})
		m.Extrusion = e
	}
	return m
}

func ParseDowntimeMeta(raw []byte) DowntimeMeta {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return DowntimeMeta{}
	}
	r := gjson.ParseBytes(raw)
	return DowntimeMeta{
		LongStop: weakBool(r.Get("long_stop")),
		IsDraft:  weakBool(r.Get("is_draft")),
		Notes:    r.Get("notes").String(),
	}
}

// Refile is 0 for entries without extrusion metadata.
func (m ProductionMeta) Refile() float64 {
	if m.Extrusion == nil {
		return 0
	}
	return m.Extrusion.Refile
}

func (m ProductionMeta) Borra() float64 {
	if m.Extrusion == nil {
		return 0
	}
	return m.Extrusion.Borra
}

// WeakFloat reads a number, or a string using either a decimal point or a decimal comma.
// Anything else, including NaN and infinities, is 0.
func WeakFloat(r gjson.Result) float64 {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
		var err error
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func weakBool(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.String:
		b, _ := strconv.ParseBool(strings.TrimSpace(r.Str))
		return b
	default:
		return false
	}
}

func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func firstString(r gjson.Result, paths ...string) string {
	return firstOf(r, paths...).String()
}
