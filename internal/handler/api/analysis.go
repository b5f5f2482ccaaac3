package api

import (
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// signalCacheTTL bounds how stale a cached signal response may be.
const signalCacheTTL = 5 * time.Minute

// AnalysisHandler exposes the signal and anomaly pipeline over HTTP.
type AnalysisHandler struct {
	logger    *xlogger.Logger
	analyze   *usecase.AnalyzeUseCase
	watchlist *usecase.WatchlistUseCase
	store     domrepo.BarStore
	cache     cache.Service
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	analyze *usecase.AnalyzeUseCase,
	watchlist *usecase.WatchlistUseCase,
	store domrepo.BarStore,
	c cache.Service,
) *AnalysisHandler {
	return &AnalysisHandler{
		logger:    logger,
		analyze:   analyze,
		watchlist: watchlist,
		store:     store,
		cache:     c,
	}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/anomaly", h.Anomaly)
	g.POST("/run", h.Run)
	g.GET("/watchlist", h.Watchlist)
	e.GET("/healthz", h.Health)
}

// resolve builds the instrument for a request, preferring the watchlist
// entry so ad-hoc queries pick up the configured display name.
func (h *AnalysisHandler) resolve(symbol, market, name string) models.Instrument {
	if inst, ok := h.watchlist.Find(symbol); ok {
		return inst
	}
	return models.Instrument{
		Symbol: symbol,
		Name:   name,
		Market: models.Market(market),
	}
}

func (h *AnalysisHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	inst := h.resolve(req.Symbol, req.Market, req.Name)

	cacheKey := cache.GenerateKeyWithParams("signal", inst.Key())
	if h.cache != nil && !req.Refresh {
		var cached models.InstrumentReport
		if err := h.cache.Get(c.Request().Context(), cacheKey, &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	report, err := h.analyze.Analyze(c.Request().Context(), inst, req.Refresh)
	if err != nil {
		h.logger.Error("signal usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no analyzable history for %s", inst.Key()).WithError(err))
	}
	if h.cache != nil {
		_ = h.cache.Set(c.Request().Context(), cacheKey, report, signalCacheTTL)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *AnalysisHandler) Anomaly(c echo.Context) error {
	req := &models.AnomalyCheckRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	inst := h.resolve(req.Symbol, req.Market, req.Name)
	report, err := h.analyze.CheckAnomaly(c.Request().Context(), inst, req.Threshold)
	if err != nil {
		h.logger.Error("anomaly usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	// no anomaly is a valid outcome, not an error
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"anomaly": report,
		"flagged": report != nil,
	})
}

func (h *AnalysisHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	batch := h.watchlist.RunAll(c.Request().Context(), req.Symbols)
	return xhttp.SuccessResponse(c, batch)
}

func (h *AnalysisHandler) Watchlist(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.watchlist.Instruments())
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
