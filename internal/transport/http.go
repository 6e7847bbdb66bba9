package transport

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type HTTP struct {
	router Router
	user   string
	engine *gin.Engine
}

func NewHTTP(router Router, defaultUser string) *HTTP {
	gin.SetMode(gin.ReleaseMode)
	h := &HTTP{router: router, user: defaultUser, engine: gin.New()}
	h.engine.Use(gin.Recovery(), requestLog())

	h.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api := h.engine.Group("/api")
	api.POST("/route", h.route)
	api.POST("/classify", h.classify)
	api.DELETE("/pending/:user", h.clear)
	return h
}

func (h *HTTP) Handler() http.Handler { return h.engine }

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (h *HTTP) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("HTTP API listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HTTP) route(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, serve(c.Request.Context(), h.router, req, h.user))
}

func (h *HTTP) classify(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d := h.router.Diagnose(req.Text)
	c.JSON(http.StatusOK, gin.H{"intent": d.Intent, "reasons": d.Reasons})
}

func (h *HTTP) clear(c *gin.Context) {
	user := strings.TrimSpace(c.Param("user"))
	if err := h.router.ClearPendingAction(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "took", time.Since(start))
	}
}
