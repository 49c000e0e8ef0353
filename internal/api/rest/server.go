package rest

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenRelayCore/internal/api/websocket"
	"github.com/KevinKickass/OpenRelayCore/internal/config"
	"github.com/KevinKickass/OpenRelayCore/internal/interfaces"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	lm     interfaces.LifecycleManager
	logger *zap.Logger
	server *http.Server
	wsHub  *websocket.Hub
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New(indexTemplateName).Parse(indexHTML)))

	s := &Server{
		router: router,
		lm:     lm,
		logger: logger,
		wsHub:  wsHub,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start binds the listener synchronously so a busy port is reported to the
// caller, then serves in the background.
func (s *Server) Start() error {
	ln, err := listen(s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/", s.indexPage)
	s.router.GET("/info", s.deviceInfo)
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.GET("/relays", s.listRelays)
		api.GET("/relay", s.getRelay)
		api.POST("/relay/control", s.controlRelay)
		api.POST("/relays/all", s.controlAllRelays)
		api.GET("/ws/status", s.wsStatus)
		api.GET("/system/status", s.getSystemStatus)
	}

	s.router.GET("/ws", s.wsConnect)
}

func (s *Server) wsConnect(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	sessions := s.wsHub.Sessions()
	ids := make([]string, 0, len(sessions))
	for _, id := range sessions {
		ids = append(ids, id.String())
	}

	c.JSON(http.StatusOK, gin.H{
		"connected_clients": len(ids),
		"sessions":          ids,
	})
}
