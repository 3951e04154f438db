package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/metrics"
	"github.com/nakamo-io/supportflow/ai/orchestrator"
	"github.com/nakamo-io/supportflow/ai/routing"
	"github.com/nakamo-io/supportflow/internal/profile"
)

// Server is the HTTP front for the orchestrator.
type Server struct {
	echo    *echo.Echo
	profile *profile.Profile
	orch    *orchestrator.Orchestrator
	threads *threadRegistry
	logger  *slog.Logger
}

// New builds the server and registers all routes.
func New(p *profile.Profile, orch *orchestrator.Orchestrator, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:    e,
		profile: p,
		orch:    orch,
		threads: newThreadRegistry(),
		logger:  logger,
	}

	e.GET("/health", s.health)
	e.GET("/api/v1/agents", s.listAgents)
	e.POST("/api/v1/chat", s.chat)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Wrap(s.echo.Shutdown(shutdownCtx), "shutdown http server")
	}
}

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	threadID, thread, release := s.threads.acquire(req.ThreadID)
	defer release()

	out, err := s.orch.HandleRequest(c.Request().Context(), req.Message, thread)
	if err != nil {
		s.logger.Error("chat request failed", "thread_id", threadID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "no responder could handle the request")
	}
	return c.JSON(http.StatusOK, chatResponse{Response: out, ThreadID: threadID})
}

type agentInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

func (s *Server) listAgents(c echo.Context) error {
	infos := []agentInfo{
		{Name: string(routing.ResponderKnowledgeQA), Description: "Answers support questions from the knowledge base."},
		{Name: string(routing.ResponderDomainExpert), Description: "Expert answers on AI ethics topics."},
		{Name: string(routing.ResponderWeather), Description: "Current weather conditions by location."},
		{Name: string(routing.ResponderEmailFormatter), Description: "Formats replies as professional support emails."},
		{Name: string(routing.ResponderDirect), Description: "Direct answers from the orchestrator."},
		{Name: string(routing.ResponderPlanning), Description: "Multi-step planning for complex tasks."},
	}
	for i := range infos {
		infos[i].DisplayName = routing.Responder(infos[i].Name).DisplayName()
	}
	return c.JSON(http.StatusOK, infos)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.profile.Version,
	})
}
