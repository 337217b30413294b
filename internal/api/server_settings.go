package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tabshell/internal/inject"
)

type settingsOutput struct {
	Body inject.FilterConfig
}

func registerSettingsHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-settings", Method: http.MethodGet, Path: "/api/v1/settings", Summary: "Get content filter settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*settingsOutput, error) {
			cfg, err := svc.GetSettings(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &settingsOutput{Body: cfg}, nil
		})

	type saveSettingsInput struct {
		Body inject.FilterConfig
	}
	huma.Register(api, huma.Operation{OperationID: "save-settings", Method: http.MethodPut, Path: "/api/v1/settings", Summary: "Save content filter settings; applies from the next page load", Tags: []string{"Settings"}},
		func(ctx context.Context, input *saveSettingsInput) (*settingsOutput, error) {
			cfg, err := svc.SaveSettings(ctx, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &settingsOutput{Body: cfg}, nil
		})
}
