package server

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

// Server は合成エンジンを HTTP で公開します。
// 音声合成は行わないため、リクエストの各行にはクリップが添付されている必要があります。
type Server struct {
	Echo       *echo.Echo
	Compositor *timeline.Compositor
	Emitter    *render.Emitter

	// TaggedParser は /api/parse ごとに新しいパーサーを返します。パーサーは状態を持つため共有しません。
	TaggedParser func() *script.TaggedParser
}

// NewServer は新しい Server を作成します。logLevel は "debug" / "info" / "warn" / "error" です。
// HTTP サーバーのリクエストコンテキストは ctx から派生します。
func NewServer(ctx context.Context, compositor *timeline.Compositor, emitter *render.Emitter, logLevel string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLevel(logLevel))
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("4M"))

	s := &Server{
		Echo:         e,
		Compositor:   compositor,
		Emitter:      emitter,
		TaggedParser: defaultTaggedParser,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/healthz", s.handleGetHealth)

	api := s.Echo.Group("/api")
	api.POST("/timeline", s.handlePostTimeline) // script document with clips -> social + dialogue sequences
	api.POST("/parse", s.handlePostParse)       // tagged plain text -> utterances
}

func (s *Server) Start(addr string) error {
	slog.Info("サーバーを起動します", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("サーバーを停止します")
	return s.Echo.Shutdown(ctx)
}

func defaultTaggedParser() *script.TaggedParser {
	return script.NewTaggedParser(script.DefaultMaxSegmentCharLength, "")
}

func echoLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
