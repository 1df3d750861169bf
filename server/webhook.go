package server

import (
	"net/http"

	"cross_bot/logger"
	"cross_bot/models"

	"github.com/gin-gonic/gin"
)

// SignalHandler consumes validated crossover signals.
type SignalHandler interface {
	OnSignal(sig models.Signal) (models.Outcome, error)
}

// Server is the webhook ingress for crossover alerts (e.g. TradingView).
// It validates the request shape and hands the signal to the engine; a
// malformed signal is rejected here and never retried.
type Server struct {
	engine SignalHandler
}

func New(engine SignalHandler) *Server {
	return &Server{engine: engine}
}

type signalRequest struct {
	Time      string `json:"time" binding:"required"`
	Base      string `json:"base" binding:"required"`
	Quote     string `json:"quote" binding:"required"`
	CrossType string `json:"crossType" binding:"required"`
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/", s.handleSignal)

	return r
}

func (s *Server) handleSignal(c *gin.Context) {
	var req signalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Errorf("Rejected signal: request body did not contain the required parameters: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters"})
		return
	}

	direction, ok := models.ParseDirection(req.CrossType)
	if !ok {
		logger.Errorf("Rejected signal: unknown crossType %q", req.CrossType)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown crossType"})
		return
	}

	sig := models.Signal{
		Pair:      models.NewTradingPair(req.Base, req.Quote),
		Direction: direction,
		Interval:  req.Time,
	}

	// Each signal runs as its own task; the engine serializes per pair.
	go func() {
		if _, err := s.engine.OnSignal(sig); err != nil {
			logger.Errorf("Signal for %s failed: %v", sig.Pair.Symbol(), err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
