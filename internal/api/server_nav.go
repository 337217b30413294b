package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tabshell/internal/navigation"
)

type navOutput struct {
	Body struct {
		Sent bool `json:"sent" doc:"False when the gesture or button was a no-op"`
	}
}

func navResult(sent bool, err error) (*navOutput, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	out := &navOutput{}
	out.Body.Sent = sent
	return out, nil
}

func registerNavHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "nav-back", Method: http.MethodPost, Path: "/api/v1/nav/back", Summary: "Go back in the active tab", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct{}) (*navOutput, error) {
			return navResult(svc.Back(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "nav-forward", Method: http.MethodPost, Path: "/api/v1/nav/forward", Summary: "Go forward in the active tab", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct{}) (*navOutput, error) {
			return navResult(svc.Forward(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "nav-reload", Method: http.MethodPost, Path: "/api/v1/nav/reload", Summary: "Pull to refresh the active tab", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct{}) (*navOutput, error) {
			if err := svc.Reload(ctx); err != nil {
				return nil, mapErr(err)
			}
			return navResult(true, nil)
		})

	type swipeInput struct {
		Body struct {
			DX float64 `json:"dx" doc:"Horizontal drag distance; negative is a left swipe"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "nav-swipe", Method: http.MethodPost, Path: "/api/v1/nav/swipe", Summary: "Map a horizontal swipe to back or forward", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *swipeInput) (*navOutput, error) {
			return navResult(svc.Swipe(ctx, input.Body.DX))
		})

	type directiveOutput struct {
		Body navigation.Directive
	}
	huma.Register(api, huma.Operation{OperationID: "nav-directive", Method: http.MethodGet, Path: "/api/v1/nav/directive", Summary: "Current load directive with the injected script", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct{}) (*directiveOutput, error) {
			d, err := svc.CurrentDirective(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &directiveOutput{Body: d}, nil
		})
}
