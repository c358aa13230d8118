package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server は管理APIのHTTPサーバーを管理する。
type Server struct {
	engine *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// New は新しいServerを生成する。
func New(addr string, svc Service, logger *slog.Logger) *Server {
	engine := gin.New()

	// ミドルウェア登録
	engine.Use(TraceIDMiddleware())
	engine.Use(LoggingMiddleware(logger))
	engine.Use(RecoveryMiddleware(logger))

	SetupRouter(engine, NewHandler(svc))

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
		logger: logger,
	}
}

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *Handler) {
	engine.GET("/health", h.HandleHealth)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/registrations", h.HandleRegistrations)
		v1.GET("/sms", h.HandlePendingSMS)
		v1.POST("/sms", h.HandleSendSMS)
		v1.GET("/rejected", h.HandleRejected)
		v1.POST("/reload", h.HandleReload)
	}
}

// Handler はhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動する。
func (s *Server) Run() error {
	s.logger.Info("starting admin server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown はサーバーをシャットダウンする。
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down admin server")
	return s.server.Shutdown(ctx)
}
