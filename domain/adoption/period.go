package adoption

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	quarterFirst = regexp.MustCompile(`^[Qq]([1-4])[_\- ]?(\d{4})$`)
	yearFirst    = regexp.MustCompile(`^(\d{4})[_\- ]?[Qq]([1-4])$`)
)

// ParsePeriod reads quarter labels such as "Q1_2023", "Q3-2024" or
// "2024Q2" and returns a sortable key (year*10 + quarter).
func ParsePeriod(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if m := quarterFirst.FindStringSubmatch(label); m != nil {
		q, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return y*10 + q, true
	}
	if m := yearFirst.FindStringSubmatch(label); m != nil {
		y, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return y*10 + q, true
	}
	return 0, false
}

// OrderPeriods returns the periods in chronological order.
//
// An explicit order wins for the labels it names. Remaining labels that parse
// as quarters follow in calendar order; anything else keeps its first
// appearance order at the end.
func OrderPeriods(seen []string, explicit []string) []string {
	out := make([]string, 0, len(seen))
	placed := make(map[string]bool, len(seen))

	present := make(map[string]bool, len(seen))
	for _, p := range seen {
		present[p] = true
	}
	for _, p := range explicit {
		if present[p] && !placed[p] {
			out = append(out, p)
			placed[p] = true
		}
	}

	type keyed struct {
		label string
		key   int
	}
	var quarters []keyed
	var others []string
	for _, p := range seen {
		if placed[p] {
			continue
		}
		placed[p] = true
		if k, ok := ParsePeriod(p); ok {
			quarters = append(quarters, keyed{p, k})
		} else {
			others = append(others, p)
		}
	}
	sort.SliceStable(quarters, func(i, j int) bool { return quarters[i].key < quarters[j].key })
	for _, q := range quarters {
		out = append(out, q.label)
	}
	return append(out, others...)
}
