package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"dcaportfolio/internal/config"
	"dcaportfolio/internal/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	srv *nethttp.Server
	log *logger.Logger
}

func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(log.Writer()))
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func NewServer(cfg config.HTTPConfig, h *Handler, log *logger.Logger) *Server {
	return &Server{
		srv: &nethttp.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(h, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithComponent("http").WithField("addr", s.srv.Addr).Info("HTTP сервер запущен.")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.WithComponent("http").Info("HTTP сервер остановлен.")
	return nil
}
