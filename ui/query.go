package ui

import (
	"net/url"
	"strconv"
	"strings"

	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
	"adoptdash/internal/analysis"
	"adoptdash/internal/errors"
)

// Query parameters shared by the HTML dashboard and the JSON API.
const (
	paramPeriod     = "period"
	paramTechnology = "technology"
	paramMetric     = "metric"
	paramTech       = "tech"
	paramThreshold  = "threshold"
	paramBaseline   = "baseline"
)

// parseFilter reads the repeated period and technology parameters. An absent
// parameter leaves its dimension unrestricted. A parameter that is present
// but carries only empty values (?period=) selects nothing.
func parseFilter(values url.Values) adoption.Filter {
	return adoption.Filter{
		Periods:      selection(values, paramPeriod),
		Technologies: selection(values, paramTechnology),
	}
}

func selection(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseQuery reads the filter plus metric, trend technology, threshold and
// baseline. Malformed values give an INVALID_INPUT error.
func parseQuery(values url.Values) (stats.Query, error) {
	q := stats.Query{Filter: parseFilter(values)}

	if raw := strings.TrimSpace(values.Get(paramMetric)); raw != "" {
		attr, err := adoption.ParseAttribute(raw)
		if err != nil {
			return q, errors.InvalidInput(err.Error())
		}
		q.Metric = attr
	}

	q.Technology = strings.TrimSpace(values.Get(paramTech))

	if raw := strings.TrimSpace(values.Get(paramThreshold)); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || !stats.IsFinite(t) {
			return q, errors.InvalidInput("threshold must be a number, got " + strconv.Quote(raw))
		}
		q.Threshold = &t
	}

	if raw := values.Get(paramBaseline); raw != "" {
		b, err := analysis.ParseBaseline(raw)
		if err != nil {
			return q, err
		}
		q.Baseline = b
	}
	return q, nil
}

// encodeQuery renders q back into URL parameters so chart links follow the
// page filters.
func encodeQuery(q stats.Query) string {
	values := url.Values{}
	if q.Filter.Periods != nil {
		if len(q.Filter.Periods) == 0 {
			values.Set(paramPeriod, "")
		}
		for _, p := range q.Filter.Periods {
			values.Add(paramPeriod, p)
		}
	}
	if q.Filter.Technologies != nil {
		if len(q.Filter.Technologies) == 0 {
			values.Set(paramTechnology, "")
		}
		for _, t := range q.Filter.Technologies {
			values.Add(paramTechnology, t)
		}
	}
	if q.Metric != "" {
		values.Set(paramMetric, string(q.Metric))
	}
	if q.Technology != "" {
		values.Set(paramTech, q.Technology)
	}
	if q.Threshold != nil {
		values.Set(paramThreshold, strconv.FormatFloat(*q.Threshold, 'f', -1, 64))
	}
	if q.Baseline != "" {
		values.Set(paramBaseline, string(q.Baseline))
	}
	return values.Encode()
}
