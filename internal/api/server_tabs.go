package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tabshell/internal/controller"
)

type tabListOutput struct {
	Body controller.TabList
}

func tabListResult(list controller.TabList, err error) (*tabListOutput, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &tabListOutput{Body: list}, nil
}

func registerTabHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List open tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabListOutput, error) {
			return tabListResult(svc.ListTabs(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "open-tab", Method: http.MethodPost, Path: "/api/v1/tabs", Summary: "Open a tab at the default URL and switch to it", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabListOutput, error) {
			return tabListResult(svc.OpenTab(ctx))
		})

	type closeTabInput struct {
		Index int `path:"index" doc:"Zero-based tab index"`
	}
	huma.Register(api, huma.Operation{OperationID: "close-tab", Method: http.MethodDelete, Path: "/api/v1/tabs/{index}", Summary: "Close a tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *closeTabInput) (*tabListOutput, error) {
			return tabListResult(svc.CloseTab(ctx, input.Index))
		})

	type switchTabInput struct {
		Body struct {
			Index int `json:"index" doc:"Zero-based index of the tab to activate"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "switch-tab", Method: http.MethodPut, Path: "/api/v1/tabs/active", Summary: "Switch the active tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *switchTabInput) (*tabListOutput, error) {
			return tabListResult(svc.SwitchTab(ctx, input.Body.Index))
		})

	type navigateInput struct {
		Body struct {
			URL string `json:"url" doc:"Address bar text; https:// is added when no scheme is given"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "navigate-active-tab", Method: http.MethodPut, Path: "/api/v1/tabs/active/url", Summary: "Load a URL in the active tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *navigateInput) (*tabListOutput, error) {
			return tabListResult(svc.Navigate(ctx, input.Body.URL))
		})
}
