package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"emittr/connect4/internal/analytics"
	"emittr/connect4/internal/game"
	"emittr/connect4/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type Server struct {
	router     *gin.Engine
	manager    *game.Manager
	store      storage.Store
	analytics  *analytics.Producer
	logger     *slog.Logger
	sweepEvery time.Duration

	clients map[string]map[*wsClient]struct{}
	connMu  sync.RWMutex
}

type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Store         storage.Store
	Analytics     *analytics.Producer
	Logger        *slog.Logger
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))

	s := &Server{
		router:     router,
		store:      cfg.Store,
		analytics:  cfg.Analytics,
		logger:     cfg.Logger,
		sweepEvery: cfg.SweepInterval,
		clients:    make(map[string]map[*wsClient]struct{}),
	}
	s.manager = game.NewManager(cfg.IdleTimeout, game.Hooks{
		Attach:   s.attach,
		Finished: s.onFinish,
	})

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/games", s.handleCreate)
	router.GET("/games/:id", s.handleGet)
	router.POST("/games/:id/moves", s.handleMove)
	router.DELETE("/games/:id", s.handleAbandon)
	router.GET("/games/:id/ws", s.handleWS)
	router.POST("/analyze", s.handleAnalyze)
	router.GET("/stats", s.handleStats)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves addr until ctx is cancelled, sweeping idle sessions meanwhile.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.sweeper(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweeper(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.manager.SweepIdle(); n > 0 {
				s.logger.Info("swept idle sessions", "count", n)
			}
		}
	}
}

// requestLogger logs method, path, status, bytes and duration per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"dur", time.Since(start).Round(time.Millisecond),
		)
	}
}

type createRequest struct {
	HumanFirst *bool     `json:"humanFirst"`
	Mode       game.Mode `json:"mode"`
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var view game.SessionView
	switch req.Mode {
	case "", game.ModeBot:
		humanFirst := req.HumanFirst == nil || *req.HumanFirst
		view = s.manager.StartBotGame(humanFirst)
	case game.ModeLocal:
		view = s.manager.StartLocalGame()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode " + string(req.Mode)})
		return
	}
	s.logger.Debug("session started", "session", view.ID, "mode", view.Mode)
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleGet(c *gin.Context) {
	view, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrSessionNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column required"})
		return
	}
	view, err := s.manager.HandleMove(c.Param("id"), *req.Column)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleAbandon(c *gin.Context) {
	if err := s.manager.Abandon(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type analyzeRequest struct {
	Rows   []string      `json:"rows" binding:"required"`
	Player game.PlayerID `json:"player"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Player == game.NoPlayer {
		req.Player = game.Player1
	}
	if !req.Player.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be 1 or 2"})
		return
	}
	if !defaultShape(req.Rows) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "board must be 7 columns by 6 rows"})
		return
	}
	g, err := game.ParseGrid(req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game.Analyze(g, req.Player))
}

func defaultShape(rows []string) bool {
	if len(rows) != game.DefaultRows {
		return false
	}
	for _, r := range rows {
		if len(r) != game.DefaultColumns {
			return false
		}
	}
	return true
}

func (s *Server) handleStats(c *gin.Context) {
	summary, err := s.store.DecisionSummary(c.Request.Context())
	if err != nil {
		s.logger.Error("decision summary", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"decisions": summary,
		"sessions":  s.manager.Len(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidCol):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrColumnFull),
		errors.Is(err, game.ErrInvalidTurn),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNotStarted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// attach runs under the manager lock, so listeners must not block.
func (s *Server) attach(sess *game.Session) {
	id := sess.ID
	m := sess.Match

	m.Grid().Changed().Subscribe(func(ch game.CellChange) {
		s.broadcast(id, gin.H{"type": "cell", "column": ch.Column, "row": ch.Row, "owner": ch.Owner})
	})
	m.PlayerChanged().Subscribe(func(p game.PlayerID) {
		s.broadcast(id, gin.H{"type": "turn", "player": p})
	})
	m.Decided().Subscribe(func(d game.Decision) {
		s.broadcast(id, gin.H{"type": "decision", "player": d.Player, "stats": d.Stats})
		go s.recordDecision(id, d)
	})
	m.Ended().Subscribe(func(r game.Result) {
		s.broadcast(id, gin.H{"type": "ended", "status": r.Status, "winner": r.Winner, "winning": r.Winning})
	})
}

func (s *Server) recordDecision(sessionID string, d game.Decision) {
	rec := storage.DecisionRecord{
		SessionID:        sessionID,
		Player:           int(d.Player),
		Column:           d.Stats.Column,
		DurationMs:       float64(d.Stats.Duration) / float64(time.Millisecond),
		RepliesEvaluated: d.Stats.RepliesEvaluated,
		Average:          float64(d.Stats.Average),
		Immediate:        d.Stats.Immediate,
		Fallback:         d.Stats.Fallback,
		CreatedAt:        time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveDecision(ctx, rec); err != nil {
		s.logger.Warn("decision not stored", "session", sessionID, "err", err)
	}
	s.analytics.Publish(ctx, sessionID, analytics.EventDecisionMade, map[string]any{
		"sessionId":        sessionID,
		"player":           rec.Player,
		"column":           rec.Column,
		"durationMs":       rec.DurationMs,
		"repliesEvaluated": rec.RepliesEvaluated,
		"average":          rec.Average,
		"immediate":        rec.Immediate,
		"fallback":         rec.Fallback,
	})
}

func (s *Server) onFinish(v game.SessionView) {
	var duration float64
	if v.EndedAt != nil {
		duration = v.EndedAt.Sub(v.StartedAt).Seconds()
	}
	payload := map[string]any{
		"sessionId": v.ID,
		"mode":      v.Mode,
		"status":    v.Status,
		"winner":    v.Winner,
		"turns":     v.Turns,
		"duration":  duration,
	}
	if v.Status == game.StatusWon {
		payload["winnerName"] = v.Winner.String()
	}
	s.logger.Info("game finished", "session", v.ID, "status", v.Status, "winner", v.Winner.String(), "turns", v.Turns)
	s.analytics.Publish(context.Background(), v.ID, analytics.EventGameFinished, payload)
}
