package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/tabshell/internal/controller"
	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/navigation"
	"github.com/dgnsrekt/tabshell/internal/session"
)

type stubService struct {
	err      error
	list     controller.TabList
	sent     bool
	gotIndex int
	gotURL   string
	gotDX    float64
	settings inject.FilterConfig
}

func (s *stubService) result() (controller.TabList, error) {
	if s.err != nil {
		return controller.TabList{}, s.err
	}
	return s.list, nil
}

func (s *stubService) ListTabs(ctx context.Context) (controller.TabList, error) { return s.result() }
func (s *stubService) OpenTab(ctx context.Context) (controller.TabList, error)  { return s.result() }
func (s *stubService) CloseTab(ctx context.Context, index int) (controller.TabList, error) {
	s.gotIndex = index
	return s.result()
}
func (s *stubService) SwitchTab(ctx context.Context, index int) (controller.TabList, error) {
	s.gotIndex = index
	return s.result()
}
func (s *stubService) Navigate(ctx context.Context, url string) (controller.TabList, error) {
	s.gotURL = url
	return s.result()
}
func (s *stubService) Back(ctx context.Context) (bool, error)    { return s.sent, s.err }
func (s *stubService) Forward(ctx context.Context) (bool, error) { return s.sent, s.err }
func (s *stubService) Reload(ctx context.Context) error          { return s.err }
func (s *stubService) Swipe(ctx context.Context, dx float64) (bool, error) {
	s.gotDX = dx
	return s.sent, s.err
}
func (s *stubService) CurrentDirective(ctx context.Context) (navigation.Directive, error) {
	if s.err != nil {
		return navigation.Directive{}, s.err
	}
	return navigation.Directive{Kind: navigation.KindLoad, TabID: "A", URL: "https://example.com", Script: "x"}, nil
}
func (s *stubService) GetSettings(ctx context.Context) (inject.FilterConfig, error) {
	return s.settings, s.err
}
func (s *stubService) SaveSettings(ctx context.Context, cfg inject.FilterConfig) (inject.FilterConfig, error) {
	s.settings = cfg
	return cfg, s.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDocsDarkMode(t *testing.T) {
	w := do(t, NewServer(&stubService{}, nil), http.MethodGet, "/docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}
}

func TestHealth(t *testing.T) {
	w := do(t, NewServer(&stubService{}, nil), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestListTabs(t *testing.T) {
	svc := &stubService{list: controller.TabList{
		Tabs:        []controller.TabView{{Index: 0, ID: "A", Label: "Tab 1", URL: "https://www.google.com", Active: true}},
		ActiveIndex: 0,
		MaxTabs:     7,
	}}
	w := do(t, NewServer(svc, nil), http.MethodGet, "/api/v1/tabs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var got controller.TabList
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Tabs) != 1 || got.Tabs[0].Label != "Tab 1" || got.MaxTabs != 7 {
		t.Fatalf("body = %+v", got)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		status int
	}{
		{"capacity", session.NewError(session.CodeCapacityExceeded, "You can't open more than 7 tabs.", nil), http.MethodPost, "/api/v1/tabs", "", http.StatusConflict},
		{"last tab", session.NewError(session.CodeLastTabProtected, "You need to have at least one tab open.", nil), http.MethodDelete, "/api/v1/tabs/0", "", http.StatusConflict},
		{"index", session.NewError(session.CodeIndexOutOfRange, "tab index 9 out of range (tabs=2)", nil), http.MethodPut, "/api/v1/tabs/active", `{"index":9}`, http.StatusBadRequest},
		{"validation", session.NewError(session.CodeValidation, "url is required", nil), http.MethodPut, "/api/v1/tabs/active/url", `{"url":""}`, http.StatusBadRequest},
		{"not found", session.NewError(session.CodeTabNotFound, "tab X not found", nil), http.MethodGet, "/api/v1/tabs", "", http.StatusNotFound},
		{"render", session.NewError(session.CodeRenderUnavailable, "no render surface mounted", nil), http.MethodPost, "/api/v1/nav/reload", "", http.StatusBadGateway},
		{"plain", context.DeadlineExceeded, http.MethodGet, "/api/v1/nav/directive", "", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := do(t, NewServer(&stubService{err: tt.err}, nil), tt.method, tt.path, tt.body)
		if w.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d: %s", tt.name, w.Code, tt.status, w.Body.String())
		}
	}
}

func TestCapacityNoticeInBody(t *testing.T) {
	svc := &stubService{err: session.NewError(session.CodeCapacityExceeded, "You can't open more than 7 tabs.", nil)}
	w := do(t, NewServer(svc, nil), http.MethodPost, "/api/v1/tabs", "")
	if !strings.Contains(w.Body.String(), "You can't open more than 7 tabs.") {
		t.Fatalf("body = %s; want capacity notice", w.Body.String())
	}
}

func TestRequestArgumentsReachService(t *testing.T) {
	svc := &stubService{sent: true}
	h := NewServer(svc, nil)

	if w := do(t, h, http.MethodDelete, "/api/v1/tabs/2", ""); w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d: %s", w.Code, w.Body.String())
	}
	if svc.gotIndex != 2 {
		t.Fatalf("CloseTab index = %d; want 2", svc.gotIndex)
	}

	if w := do(t, h, http.MethodPut, "/api/v1/tabs/active/url", `{"url":"example.com"}`); w.Code != http.StatusOK {
		t.Fatalf("PUT url status = %d: %s", w.Code, w.Body.String())
	}
	if svc.gotURL != "example.com" {
		t.Fatalf("Navigate url = %q; want example.com", svc.gotURL)
	}

	w := do(t, h, http.MethodPost, "/api/v1/nav/swipe", `{"dx":-75.5}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"sent":true`) {
		t.Fatalf("POST swipe = %d %s", w.Code, w.Body.String())
	}
	if svc.gotDX != -75.5 {
		t.Fatalf("Swipe dx = %v; want -75.5", svc.gotDX)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	svc := &stubService{}
	h := NewServer(svc, nil)

	body := `{"ad_block":true,"tracker_block":false,"dark_mode":true,"alternate_dns":false}`
	if w := do(t, h, http.MethodPut, "/api/v1/settings", body); w.Code != http.StatusOK {
		t.Fatalf("PUT settings status = %d: %s", w.Code, w.Body.String())
	}
	want := inject.FilterConfig{AdBlock: true, DarkMode: true}
	if svc.settings != want {
		t.Fatalf("saved = %+v; want %+v", svc.settings, want)
	}

	w := do(t, h, http.MethodGet, "/api/v1/settings", "")
	var got inject.FilterConfig
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got != want {
		t.Fatalf("GET settings = %+v; want %+v", got, want)
	}
}

func TestEventRoutesRequireBroker(t *testing.T) {
	w := do(t, NewServer(&stubService{}, nil), http.MethodGet, "/events", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /events without broker = %d; want 404", w.Code)
	}
}
