package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/tabshell/internal/controller"
	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/navigation"
	"github.com/dgnsrekt/tabshell/internal/relay"
	"github.com/dgnsrekt/tabshell/internal/session"
)

type Service interface {
	ListTabs(ctx context.Context) (controller.TabList, error)
	OpenTab(ctx context.Context) (controller.TabList, error)
	CloseTab(ctx context.Context, index int) (controller.TabList, error)
	SwitchTab(ctx context.Context, index int) (controller.TabList, error)
	Navigate(ctx context.Context, url string) (controller.TabList, error)
	Back(ctx context.Context) (bool, error)
	Forward(ctx context.Context) (bool, error)
	Reload(ctx context.Context) error
	Swipe(ctx context.Context, dx float64) (bool, error)
	CurrentDirective(ctx context.Context) (navigation.Directive, error)
	GetSettings(ctx context.Context) (inject.FilterConfig, error)
	SaveSettings(ctx context.Context, cfg inject.FilterConfig) (inject.FilterConfig, error)
}

// NewServer builds the shell control API. The event relay endpoints are
// mounted when broker is non-nil.
func NewServer(svc Service, broker *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Tab Shell API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	if broker != nil {
		router.Get("/events", relay.SSEHandler(broker))
		router.Get("/ws", relay.WSHandler(broker))
	}

	registerHealthHandlers(api)
	registerTabHandlers(api, svc)
	registerNavHandlers(api, svc)
	registerSettingsHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *session.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case session.CodeValidation, session.CodeIndexOutOfRange:
			return huma.Error400BadRequest(coded.Message)
		case session.CodeCapacityExceeded, session.CodeLastTabProtected:
			return huma.Error409Conflict(coded.Message)
		case session.CodeTabNotFound:
			return huma.Error404NotFound(coded.Message)
		case session.CodeRenderUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}
