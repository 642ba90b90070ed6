package adoption

import (
	"adoptdash/domain/core"
)

// Dataset is the immutable, ordered table of observations loaded from a
// source. Nothing mutates it after NewDataset returns; every filter produces
// a View over it.
type Dataset struct {
	id           core.DatasetID
	hash         core.Hash
	source       string
	rows         []Observation
	periods      []string
	technologies []string
	periodRank   map[string]int
}

// Meta describes where a dataset came from.
type Meta struct {
	Source string
	// Hash is the content hash of the source bytes. It seeds the dataset ID.
	Hash core.Hash
	// PeriodOrder optionally pins the chronological order of periods.
	PeriodOrder []string
}

// NewDataset copies rows into a new immutable dataset.
func NewDataset(rows []Observation, meta Meta) *Dataset {
	owned := make([]Observation, len(rows))
	copy(owned, rows)

	seenPeriod := make(map[string]bool)
	seenTech := make(map[string]bool)
	var periods, techs []string
	for _, r := range owned {
		if !seenPeriod[r.Period] {
			seenPeriod[r.Period] = true
			periods = append(periods, r.Period)
		}
		if !seenTech[r.Technology] {
			seenTech[r.Technology] = true
			techs = append(techs, r.Technology)
		}
	}

	periods = OrderPeriods(periods, meta.PeriodOrder)
	rank := make(map[string]int, len(periods))
	for i, p := range periods {
		rank[p] = i
	}

	return &Dataset{
		id:           core.NewDatasetID(meta.Hash),
		hash:         meta.Hash,
		source:       meta.Source,
		rows:         owned,
		periods:      periods,
		technologies: techs,
		periodRank:   rank,
	}
}

// ID returns the content-derived identity of the dataset.
func (d *Dataset) ID() core.DatasetID { return d.id }

// Hash returns the source content hash.
func (d *Dataset) Hash() core.Hash { return d.hash }

// Source returns a description of where the rows were read from.
func (d *Dataset) Source() string { return d.source }

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.rows) }

// Periods returns every period in chronological order.
func (d *Dataset) Periods() []string { return append([]string(nil), d.periods...) }

// Technologies returns every technology in first-appearance order.
func (d *Dataset) Technologies() []string { return append([]string(nil), d.technologies...) }

// PeriodRank returns the chronological position of a period, or -1.
func (d *Dataset) PeriodRank(period string) int {
	if r, ok := d.periodRank[period]; ok {
		return r
	}
	return -1
}

// All returns an unfiltered view.
func (d *Dataset) All() View {
	return View{ds: d}
}

// Filter is a shorthand for d.All().Filter(f).
func (d *Dataset) Filter(f Filter) View {
	return d.All().Filter(f)
}

// Filter selects observations by period and technology. Dimensions are
// AND-combined and values within a dimension are OR-combined. A nil slice
// leaves the dimension unrestricted; a non-nil empty slice selects nothing.
type Filter struct {
	Periods      []string `json:"periods,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return f.Periods == nil && f.Technologies == nil
}

func toSet(items []string) map[string]bool {
	if items == nil {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// View is an ordered subsequence of a dataset, stored as row indices into
// the parent. A nil index slice means every row.
type View struct {
	ds  *Dataset
	idx []int
}

// NewView wraps rows in a throwaway dataset. It is meant for tests and
// one-off computations over ad-hoc slices.
func NewView(rows []Observation) View {
	return NewDataset(rows, Meta{Source: "inline", Hash: core.NewHash(nil)}).All()
}

// Dataset returns the parent dataset; nil for the zero View.
func (v View) Dataset() *Dataset { return v.ds }

func (v View) full() bool { return v.idx == nil }

// Len returns the number of observations in the view.
func (v View) Len() int {
	if v.ds == nil {
		return 0
	}
	if v.full() {
		return len(v.ds.rows)
	}
	return len(v.idx)
}

// IsEmpty reports whether the view holds no observations.
func (v View) IsEmpty() bool { return v.Len() == 0 }

// At returns the i-th observation of the view.
func (v View) At(i int) Observation {
	if v.full() {
		return v.ds.rows[i]
	}
	return v.ds.rows[v.idx[i]]
}

// Each calls fn for every observation in order.
func (v View) Each(fn func(Observation)) {
	n := v.Len()
	for i := 0; i < n; i++ {
		fn(v.At(i))
	}
}

// Values returns the column attr in view order, NaN for missing cells.
func (v View) Values(attr Attribute) []float64 {
	out := make([]float64, 0, v.Len())
	v.Each(func(o Observation) {
		out = append(out, o.Value(attr))
	})
	return out
}

// Filter narrows the view. The parent dataset is never touched.
func (v View) Filter(f Filter) View {
	if v.ds == nil || f.IsEmpty() {
		return v
	}
	periods := toSet(f.Periods)
	techs := toSet(f.Technologies)

	n := v.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		o := v.At(i)
		if periods != nil && !periods[o.Period] {
			continue
		}
		if techs != nil && !techs[o.Technology] {
			continue
		}
		if v.full() {
			indices = append(indices, i)
		} else {
			indices = append(indices, v.idx[i])
		}
	}
	return View{ds: v.ds, idx: indices}
}

// Where keeps observations for which keep returns true.
func (v View) Where(keep func(Observation) bool) View {
	if v.ds == nil {
		return v
	}
	n := v.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !keep(v.At(i)) {
			continue
		}
		if v.full() {
			indices = append(indices, i)
		} else {
			indices = append(indices, v.idx[i])
		}
	}
	return View{ds: v.ds, idx: indices}
}

// Technologies lists the technologies present in the view, in dataset order.
func (v View) Technologies() []string {
	if v.ds == nil {
		return nil
	}
	present := make(map[string]bool)
	v.Each(func(o Observation) { present[o.Technology] = true })
	out := make([]string, 0, len(present))
	for _, t := range v.ds.technologies {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// Periods lists the periods present in the view, in chronological order.
func (v View) Periods() []string {
	if v.ds == nil {
		return nil
	}
	present := make(map[string]bool)
	v.Each(func(o Observation) { present[o.Period] = true })
	out := make([]string, 0, len(present))
	for _, p := range v.ds.periods {
		if present[p] {
			out = append(out, p)
		}
	}
	return out
}

// GroupByTechnology splits the view per technology, in dataset order.
func (v View) GroupByTechnology() []Group {
	techs := v.Technologies()
	groups := make([]Group, 0, len(techs))
	for _, t := range techs {
		tech := t
		groups = append(groups, Group{
			Key:  tech,
			View: v.Where(func(o Observation) bool { return o.Technology == tech }),
		})
	}
	return groups
}

// Group is a keyed sub-view.
type Group struct {
	Key  string
	View View
}

// Options lists the filter choices offered by a dataset.
type Options struct {
	Periods      []string `json:"periods"`
	Technologies []string `json:"technologies"`
}

// Options returns the periods (chronological) and technologies
// (first appearance) available for filtering.
func (d *Dataset) Options() Options {
	return Options{Periods: d.Periods(), Technologies: d.Technologies()}
}
