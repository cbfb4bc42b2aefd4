// Package server exposes pattern generation and validation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/YNCK000/strudel-studio/pkg/api"
	"github.com/YNCK000/strudel-studio/pkg/chat"
	"github.com/YNCK000/strudel-studio/pkg/provider"
	"github.com/YNCK000/strudel-studio/pkg/reference"
	"github.com/YNCK000/strudel-studio/pkg/runtime"
	"github.com/YNCK000/strudel-studio/pkg/session"
	"github.com/YNCK000/strudel-studio/pkg/tools"
	"github.com/YNCK000/strudel-studio/pkg/validator"
	"github.com/YNCK000/strudel-studio/pkg/version"
)

type Server struct {
	e        *echo.Echo
	provider provider.Provider
	registry *tools.Registry

	// Budgets are per endpoint: the streaming endpoint can afford patience
	// because the client watches progress and can cancel.
	syncBudget   runtime.Budget
	streamBudget runtime.Budget
}

func New(p provider.Provider, registry *tools.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	s := &Server{
		e:            e,
		provider:     p,
		registry:     registry,
		syncBudget:   runtime.FastBudget,
		streamBudget: runtime.PatientBudget,
	}

	group := e.Group("/api")

	// Generate a pattern, streaming progress as SSE
	group.POST("/generate", s.generateStream)
	// Generate a pattern in a single blocking request
	group.POST("/generate/sync", s.generateSync)
	// Validate pattern code without involving a model
	group.POST("/validate", s.validate)
	// List the genres the reference tool knows
	group.GET("/genres", s.genres)

	// Health check endpoint
	group.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, api.PingResponse{Status: "ok", Version: version.Version})
	})

	return s
}

// SetBudgets overrides the default per-endpoint budgets.
func (s *Server) SetBudgets(syncBudget, streamBudget runtime.Budget) {
	s.syncBudget = syncBudget
	s.streamBudget = streamBudget
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := http.Server{
		Handler: s.e,
	}

	if err := srv.Serve(ln); err != nil && ctx.Err() == nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}

	return nil
}

// Handler returns the HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// bindSession validates a generation request and builds its session. Every
// rejection happens here, before any model call is made.
func bindSession(c echo.Context) (*session.Session, error) {
	var req api.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}

	if len(req.Messages) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "messages must not be empty")
	}

	history := make([]chat.Message, 0, len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case string(chat.MessageRoleUser), string(chat.MessageRoleAssistant):
		default:
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("message %d has unsupported role %q", i, msg.Role))
		}
		history = append(history, chat.Message{
			Role:    chat.MessageRole(msg.Role),
			Content: msg.Content,
		})
	}

	if history[len(history)-1].Role != chat.MessageRoleUser {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "last message must have role user")
	}

	return session.New(session.WithHistory(history)), nil
}

func (s *Server) generateStream(c echo.Context) error {
	sess, err := bindSession(c)
	if err != nil {
		return err
	}

	rt := runtime.New(s.provider, s.registry, s.streamBudget)
	events := rt.RunStream(c.Request().Context(), sess)

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("Failed to marshal event", "error", err)
			continue
		}
		fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event.Kind(), data)
		c.Response().Flush()
	}

	return nil
}

func (s *Server) generateSync(c echo.Context) error {
	sess, err := bindSession(c)
	if err != nil {
		return err
	}

	rt := runtime.New(s.provider, s.registry, s.syncBudget)
	complete, err := rt.Run(c.Request().Context(), sess)
	if err != nil {
		return c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
	}

	if complete.Status == runtime.StatusBudgetExceeded {
		return c.JSON(http.StatusGatewayTimeout, api.ErrorResponse{
			Error:          "generation budget exceeded before a final pattern was produced",
			BudgetExceeded: true,
		})
	}

	return c.JSON(http.StatusOK, api.GenerateResponse{
		Content:    complete.Content,
		Iterations: complete.Iterations,
		TimeMS:     complete.ElapsedMS,
		Validated:  complete.Validated,
	})
}

func (s *Server) validate(c echo.Context) error {
	var req api.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code must not be empty")
	}

	res := validator.Validate(req.Code)
	return c.JSON(http.StatusOK, api.ValidateResponse{
		Valid:    res.Valid,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	})
}

func (s *Server) genres(c echo.Context) error {
	return c.JSON(http.StatusOK, api.GenresResponse{Genres: reference.Keys()})
}
