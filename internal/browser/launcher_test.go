package browser

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"testing"
	"time"
)

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%q) error = %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi(%q) error = %v", portStr, err)
	}
	return host, port
}

func TestArgs(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9333, ProfileDir: "/tmp/p", Headless: true})
	args := l.args()

	for _, want := range []string{
		"--remote-debugging-port=9333",
		"--remote-debugging-address=127.0.0.1",
		"--user-data-dir=/tmp/p",
		"--window-size=412,915",
		"--headless=new",
	} {
		if !slices.Contains(args, want) {
			t.Fatalf("args() = %v; missing %q", args, want)
		}
	}
	if last := args[len(args)-1]; last != "about:blank" {
		t.Fatalf("last arg = %q; want about:blank", last)
	}
}

func TestLaunchSkipsWhenEndpointListening(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	host, port := splitHostPort(t, ln.Addr().String())

	l := NewLauncher(Config{CDPAddress: host, CDPPort: port, ProfileDir: t.TempDir()})
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() = %v; want nil", err)
	}
	if l.Running() {
		t.Fatal("Running() = true; want false when browser was already up")
	}
}

func TestWaitForCDP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"Browser":"Chrome"}`))
	}))
	defer srv.Close()
	host, port := splitHostPort(t, srv.Listener.Addr().String())

	l := NewLauncher(Config{CDPAddress: host, CDPPort: port, ReadyTimeout: 2 * time.Second})
	if err := l.waitForCDP(context.Background()); err != nil {
		t.Fatalf("waitForCDP() = %v; want nil", err)
	}
}

func TestWaitForCDPTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	host, port := splitHostPort(t, addr)

	l := NewLauncher(Config{CDPAddress: host, CDPPort: port, ReadyTimeout: 300 * time.Millisecond})
	if err := l.waitForCDP(context.Background()); err == nil {
		t.Fatal("waitForCDP() = nil; want timeout error")
	}
}
