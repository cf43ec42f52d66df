package api

import (
	"net/http"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/usecase"
	xhttp "MacroPulse/pkg/http"
	xlogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// SeriesEchoHandler serves aligned macro series, sentiment buckets, and
// on-demand pipeline runs.
type SeriesEchoHandler struct {
	logger   *xlogger.Logger
	query    *usecase.SeriesQuery
	runner   *usecase.Runner
	defaults usecase.RunDefaults
}

func NewSeriesEchoHandler(logger *xlogger.Logger, query *usecase.SeriesQuery, runner *usecase.Runner, defaults usecase.RunDefaults) *SeriesEchoHandler {
	return &SeriesEchoHandler{logger: logger, query: query, runner: runner, defaults: defaults}
}

func (h *SeriesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/series", h.Series)
	g.GET("/sentiment", h.Sentiment)
	g.POST("/run", h.Run)
	e.GET("/health", h.Health)
}

func (h *SeriesEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ind, _ := drepo.NormalizeIndicator(req.Indicator)
	from, to := h.resolveRange(req.From, req.To)

	rows, err := h.query.Aligned(c.Request().Context(), ind, from, to, req.Limit)
	if err != nil {
		h.logger.Error("series query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SeriesEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to := h.resolveRange(req.From, req.To)

	buckets, err := h.query.Sentiment(c.Request().Context(), req.Subject, from, to, req.Limit)
	if err != nil {
		h.logger.Error("sentiment query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, buckets, int64(len(buckets)))
}

func (h *SeriesEchoHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	var err error
	switch req.Indicator {
	case "all":
		err = h.runner.EnqueueAll(ctx, req.From, req.To)
	case "sentiment":
		err = h.runner.EnqueueSentiment(ctx, nil, req.From, req.To)
	default:
		ind, _ := drepo.NormalizeIndicator(req.Indicator)
		err = h.runner.EnqueueIndicator(ctx, ind, req.From, req.To)
	}
	if err != nil {
		h.logger.Error("run enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{
		"status": "enqueued",
		"target": req.Indicator,
	})
}

func (h *SeriesEchoHandler) Health(c echo.Context) error {
	if err := h.query.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *SeriesEchoHandler) resolveRange(from, to string) (time.Time, time.Time) {
	f := util.ParseTimeDefault(from, h.defaults.From)
	t := util.ParseTimeDefault(to, h.defaults.To)
	return util.ClampRange(f, t)
}
