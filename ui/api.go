package ui

import (
	"context"
	"net/http"
	"net/url"

	"adoptdash/internal/errors"
	"adoptdash/ports"
)

// endpoint computes the JSON body of one read-only API route.
type endpoint func(ctx context.Context, values url.Values) (interface{}, error)

// route binds an endpoint to its path. Both the gin server and the chi app
// mount the same table.
type route struct {
	path    string
	handler endpoint
}

func apiRoutes(reader ports.ReaderPort) []route {
	return []route{
		{"/api/options", func(ctx context.Context, _ url.Values) (interface{}, error) {
			return reader.Options(ctx)
		}},
		{"/api/report", func(ctx context.Context, values url.Values) (interface{}, error) {
			q, err := parseQuery(values)
			if err != nil {
				return nil, err
			}
			report, err := reader.Report(ctx, q)
			if err != nil {
				return nil, err
			}
			return newReportDTO(report), nil
		}},
		{"/api/summary", func(ctx context.Context, values url.Values) (interface{}, error) {
			summary, err := reader.Summary(ctx, parseFilter(values))
			if err != nil {
				return nil, err
			}
			return newSummaryDTO(summary), nil
		}},
		{"/api/probability", func(ctx context.Context, values url.Values) (interface{}, error) {
			q, err := parseQuery(values)
			if err != nil {
				return nil, err
			}
			p, err := reader.Probability(ctx, q)
			if err != nil {
				return nil, err
			}
			return newProbabilityDTO(p), nil
		}},
		{"/api/ranking", func(ctx context.Context, values url.Values) (interface{}, error) {
			q, err := parseQuery(values)
			if err != nil {
				return nil, err
			}
			r, err := reader.Ranking(ctx, q)
			if err != nil {
				return nil, err
			}
			return newRankingDTO(r), nil
		}},
		{"/api/trend", func(ctx context.Context, values url.Values) (interface{}, error) {
			q, err := parseQuery(values)
			if err != nil {
				return nil, err
			}
			series, err := reader.Trend(ctx, q)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"series": newTrendDTO(series)}, nil
		}},
		{"/api/correlation", func(ctx context.Context, values url.Values) (interface{}, error) {
			m, err := reader.Correlation(ctx, parseFilter(values))
			if err != nil {
				return nil, err
			}
			return newCorrelationDTO(m), nil
		}},
		{"/api/distribution", func(ctx context.Context, values url.Values) (interface{}, error) {
			q, err := parseQuery(values)
			if err != nil {
				return nil, err
			}
			d, err := reader.Distribution(ctx, q)
			if err != nil {
				return nil, err
			}
			return newDistributionDTO(d), nil
		}},
	}
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error code to an HTTP status. Errors that stop the
// dataset from loading make the whole dashboard unavailable.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeMissingInputFile, errors.CodeDataFormat:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newErrorBody(err error) errorBody {
	code := errors.CodeInternalError
	if errors.IsAppError(err) {
		code = errors.GetCode(err)
	}
	return errorBody{Error: err.Error(), Code: code}
}
