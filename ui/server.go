package ui

import (
	"html/template"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
	"adoptdash/internal"
	"adoptdash/internal/errors"
	"adoptdash/internal/metrics"
	"adoptdash/ports"
	"adoptdash/ui/middleware"
)

// ServerOptions wires the optional collaborators of a Server.
type ServerOptions struct {
	Logger   *internal.Logger
	Metrics  *metrics.Recorder
	Renderer ports.ChartRenderer
	// MetricsEnabled mounts GET /metrics.
	MetricsEnabled bool
}

// Server is the HTML dashboard plus the JSON API, served by gin.
type Server struct {
	router    *gin.Engine
	reader    ports.ReaderPort
	renderer  ports.ChartRenderer
	templates *template.Template
	logger    *internal.Logger
	metrics   *metrics.Recorder
}

// NewServer builds the router. The gin mode is a process-wide setting and is
// left to the caller.
func NewServer(reader ports.ReaderPort, opts ServerOptions) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.Renderer == nil {
		return nil, errors.ConfigInvalid("chart renderer is required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		reader:    reader,
		renderer:  opts.Renderer,
		templates: templates,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes(opts.MetricsEnabled)
	return s, nil
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestMetrics(s.metrics, s.logger))

	static, err := staticFS()
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", static)
	return nil
}

func (s *Server) setupRoutes(withMetrics bool) {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/charts/:name", s.handleChart)
	s.router.GET("/healthz", s.handleHealth)

	for _, r := range apiRoutes(s.reader) {
		s.router.GET(r.path, s.serveJSON(r.handler))
	}

	if withMetrics {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// serveJSON adapts an endpoint to gin.
func (s *Server) serveJSON(h endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := h(c.Request.Context(), c.Request.URL.Query())
		if err != nil {
			s.logFailure(c.FullPath(), err)
			c.JSON(statusFor(err), newErrorBody(err))
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func (s *Server) logFailure(route string, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s failed: %v", route, err)
		return
	}
	s.logger.Debug("[Server] %s rejected: %v", route, err)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleChart serves /charts/<kind>.<png|svg> for the query filters.
func (s *Server) handleChart(c *gin.Context) {
	name := c.Param("name")
	ext := path.Ext(name)
	kind := ports.ChartKind(strings.TrimSuffix(name, ext))
	format := ports.ImageFormat(strings.TrimPrefix(ext, "."))
	if !knownChart(kind) || (format != ports.FormatPNG && format != ports.FormatSVG) {
		c.JSON(http.StatusNotFound, newErrorBody(errors.NotFound("chart "+name)))
		return
	}

	q, err := parseQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(statusFor(err), newErrorBody(err))
		return
	}
	set, err := s.reader.Charts(c.Request.Context(), q)
	if err != nil {
		s.logFailure(c.FullPath(), err)
		c.JSON(statusFor(err), newErrorBody(err))
		return
	}

	start := time.Now()
	img, err := s.renderer.Render(set, kind, format)
	s.metrics.Observe("chart_render", err == nil, time.Since(start))
	if err != nil {
		s.logFailure(c.FullPath(), err)
		c.JSON(statusFor(err), newErrorBody(err))
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, format.ContentType(), img)
}

func knownChart(kind ports.ChartKind) bool {
	for _, k := range ports.ChartKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// choice is one option of a filter control.
type choice struct {
	Value    string
	Label    string
	Selected bool
}

type chartLink struct {
	Title string
	URL   string
	SVG   string
}

type dashboardPage struct {
	Source       string
	DatasetID    string
	GeneratedAt  string
	Periods      []choice
	Technologies []choice
	Metrics      []choice
	TrendTechs   []choice
	Baselines    []choice
	Threshold    string
	Empty        bool
	KPIs         kpisDTO
	Summary      summaryDTO
	Probability  probabilityDTO
	Charts       []chartLink
	Conclusions  template.HTML
}

type errorPage struct {
	Status  int
	Title   string
	Message string
	Code    string
}

var chartTitles = map[ports.ChartKind]string{
	ports.ChartTrend:       "Adoption trend",
	ports.ChartHistogram:   "Adoption rate distribution",
	ports.ChartBoxPlot:     "Adoption rate by technology",
	ports.ChartRanking:     "Technology ranking",
	ports.ChartScatter:     "Investment vs adoption",
	ports.ChartCorrelation: "Correlation matrix",
}

func (s *Server) handleIndex(c *gin.Context) {
	q, err := parseQuery(c.Request.URL.Query())
	if err != nil {
		s.renderError(c, err)
		return
	}
	report, err := s.reader.Report(c.Request.Context(), q)
	if err != nil {
		s.renderError(c, err)
		return
	}
	options, err := s.reader.Options(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "dashboard.html", newDashboardPage(report, options))
}

func newDashboardPage(report *stats.Report, options adoption.Options) dashboardPage {
	q := report.Query
	page := dashboardPage{
		Source:       report.Source,
		DatasetID:    report.DatasetID,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Periods:      choices(options.Periods, q.Filter.Periods),
		Technologies: choices(options.Technologies, q.Filter.Technologies),
		Empty:        report.IsEmpty(),
		KPIs:         newKPIsDTO(report.KPIs),
		Summary:      newSummaryDTO(report.Summary),
		Probability:  newProbabilityDTO(report.Probability),
		Conclusions:  template.HTML(report.Conclusions),
	}
	if q.Threshold != nil {
		page.Threshold = strconv.FormatFloat(*q.Threshold, 'f', -1, 64)
	}

	for _, attr := range adoption.NumericAttributes {
		page.Metrics = append(page.Metrics, choice{Value: string(attr), Label: attr.Label(), Selected: attr == q.Metric})
	}
	for _, tech := range options.Technologies {
		page.TrendTechs = append(page.TrendTechs, choice{Value: tech, Label: tech, Selected: tech == q.Technology})
	}
	for _, b := range []stats.Baseline{stats.BaselineMean, stats.BaselineMedian} {
		page.Baselines = append(page.Baselines, choice{Value: string(b), Label: "Investment " + string(b), Selected: b == q.Baseline})
	}

	encoded := encodeQuery(q)
	for _, kind := range ports.ChartKinds {
		base := "/charts/" + string(kind)
		page.Charts = append(page.Charts, chartLink{
			Title: chartTitles[kind],
			URL:   base + ".png?" + encoded,
			SVG:   base + ".svg?" + encoded,
		})
	}
	return page
}

// choices marks every option as selected when the dimension is unrestricted.
func choices(all, selected []string) []choice {
	picked := make(map[string]bool, len(selected))
	for _, v := range selected {
		picked[v] = true
	}
	out := make([]choice, 0, len(all))
	for _, v := range all {
		out = append(out, choice{Value: v, Label: v, Selected: selected == nil || picked[v]})
	}
	return out
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	s.logFailure(c.FullPath(), err)

	page := errorPage{Status: status, Code: newErrorBody(err).Code, Message: err.Error()}
	switch errors.GetCode(err) {
	case errors.CodeMissingInputFile:
		page.Title = "Data file not found"
		page.Message = "The dashboard data could not be found. " + err.Error()
	case errors.CodeDataFormat:
		page.Title = "Data file is malformed"
	case errors.CodeInvalidInput:
		page.Title = "Invalid filter"
	default:
		page.Title = "Something went wrong"
	}
	s.renderTemplate(c, status, "error.html", page)
}
