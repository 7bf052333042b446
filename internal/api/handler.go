package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"strategylab/internal/backtest"
	"strategylab/internal/live"
	"strategylab/internal/strategy"
	"strategylab/internal/types"
)

// Handler serves the API routes
type Handler struct {
	runner   *live.Runner
	defaults backtest.Params
}

// NewHandler creates a handler
func NewHandler(runner *live.Runner, defaults backtest.Params) *Handler {
	return &Handler{runner: runner, defaults: defaults}
}

// BacktestRequest runs either explicit signals or a named strategy over bars.
// Params holds overrides on top of the server defaults.
type BacktestRequest struct {
	Symbol         string          `json:"symbol"`
	Bars           []types.OHLCV   `json:"bars" binding:"required"`
	Signals        []int           `json:"signals"`
	Strategy       string          `json:"strategy"`
	StrategyParams strategy.Params `json:"strategy_params"`
	Params         json.RawMessage `json:"params"`
}

// StartLiveRequest creates a paper-trading instance
type StartLiveRequest struct {
	Symbol         string          `json:"symbol" binding:"required"`
	Strategy       string          `json:"strategy" binding:"required"`
	StrategyParams strategy.Params `json:"strategy_params"`
	InitialCapital float64         `json:"initial_capital"`
	CommissionRate *float64        `json:"commission_rate"`
	Slippage       *float64        `json:"slippage"`
}

// StepRequest carries the latest bar window of an instance
type StepRequest struct {
	Bars []types.OHLCV `json:"bars" binding:"required"`
}

// ListStrategies returns the registered generators and their defaults
func (h *Handler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(strategy.Names()),
		"data":  strategy.Describe(),
	})
}

// RunBacktest simulates one request
func (h *Handler) RunBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := h.defaults
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params: " + err.Error()})
			return
		}
	}

	var (
		signals []types.Signal
		name    = req.Strategy
	)
	switch {
	case req.Signals != nil:
		parsed, err := backtest.ParseSignals(req.Signals)
		if err != nil {
			writeError(c, err)
			return
		}
		signals = parsed
		if name == "" {
			name = "custom"
		}
	case req.Strategy != "":
		gen, err := strategy.New(req.Strategy, req.StrategyParams)
		if err != nil {
			writeError(c, err)
			return
		}
		signals = gen.Generate(req.Bars)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either signals or strategy is required"})
		return
	}

	start := time.Now()
	res, err := backtest.Run(req.Bars, signals, params)
	if err != nil {
		writeError(c, err)
		return
	}
	res.Symbol = req.Symbol
	res.Strategy = name

	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"data":       res,
	})
}

// StartLive creates an instance
func (h *Handler) StartLive(c *gin.Context) {
	var req StartLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	capital := req.InitialCapital
	if capital == 0 {
		capital = h.defaults.InitialCapital
	}
	costs := backtest.Costs{CommissionRate: h.defaults.CommissionRate, Slippage: h.defaults.Slippage}
	if req.CommissionRate != nil {
		costs.CommissionRate = *req.CommissionRate
	}
	if req.Slippage != nil {
		costs.Slippage = *req.Slippage
	}

	state, err := h.runner.Start(c.Request.Context(), req.Symbol, req.Strategy, req.StrategyParams, capital, costs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "data": state})
}

// ListLive returns the stored instance ids
func (h *Handler) ListLive(c *gin.Context) {
	ids, err := h.runner.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "count": len(ids), "data": ids})
}

// GetLive returns one instance state
func (h *Handler) GetLive(c *gin.Context) {
	state, err := h.runner.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": state})
}

// DeleteLive removes an instance
func (h *Handler) DeleteLive(c *gin.Context) {
	if err := h.runner.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"deleted": c.Param("id")}})
}

// StepLive applies the latest bar of the posted window
func (h *Handler) StepLive(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, outcome, err := h.runner.Tick(c.Request.Context(), c.Param("id"), req.Bars)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"state":   state,
			"outcome": outcome,
		},
	})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, live.ErrStateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, backtest.ErrInvalidInput),
		errors.Is(err, live.ErrInvalidID),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, strategy.ErrInvalidParams):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
