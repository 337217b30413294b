package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/tabshell/internal/api"
	"github.com/dgnsrekt/tabshell/internal/browser"
	"github.com/dgnsrekt/tabshell/internal/config"
	"github.com/dgnsrekt/tabshell/internal/controller"
	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/navigation"
	"github.com/dgnsrekt/tabshell/internal/netutil"
	"github.com/dgnsrekt/tabshell/internal/relay"
	"github.com/dgnsrekt/tabshell/internal/render"
	"github.com/dgnsrekt/tabshell/internal/session"
	"github.com/dgnsrekt/tabshell/internal/settings"
)

func main() {
	cfg, err := config.LoadShell()
	if err != nil {
		slog.Error("failed to load shell config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("tabshell config loaded",
		"bind_addr", cfg.BindAddr,
		"cdp_url", cfg.CDPURL(),
		"launch_browser", cfg.LaunchBrowser,
		"max_tabs", cfg.MaxTabs,
		"default_url", cfg.DefaultURL,
		"refresh_timeout", cfg.RefreshTimeout,
		"swipe_threshold", cfg.SwipeThreshold,
		"settings_file", cfg.SettingsFile,
		"log_level", cfg.LogLevel,
	)

	filters, err := settings.LoadFile(cfg.SettingsFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load settings defaults", "path", cfg.SettingsFile, "error", err)
			os.Exit(1)
		}
		slog.Info("no settings defaults file, all filters off", "path", cfg.SettingsFile)
		filters = inject.FilterConfig{}
	}
	store := settings.NewStore(filters)

	var launcher *browser.Launcher
	if cfg.LaunchBrowser {
		launcher = browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ProfileDir: cfg.ProfileDir,
		})
		if err := launcher.Launch(context.Background()); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
	}

	factory := render.NewFactory(cfg.CDPURL(), cfg.NavigateTimeout)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = factory.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Error("failed to connect render factory", "cdp_url", cfg.CDPURL(), "error", err)
		shutdownBrowser(launcher)
		os.Exit(1)
	}

	broker := relay.NewBroker()
	sess := session.New(session.Options{MaxTabs: cfg.MaxTabs, DefaultURL: cfg.DefaultURL})
	bridge := navigation.New(sess, store, factory, broker, navigation.Options{
		RefreshTimeout: cfg.RefreshTimeout,
		SwipeThreshold: cfg.SwipeThreshold,
	})
	if err := bridge.Start(context.Background()); err != nil {
		slog.Error("failed to mount first tab", "error", err)
		factory.Close()
		shutdownBrowser(launcher)
		os.Exit(1)
	}

	svc := controller.NewService(bridge, store, sess.MaxTabs())
	h := api.NewServer(svc, broker)

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()
	srv := &http.Server{Handler: h}

	go func() {
		slog.Info("tabshell listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("tabshell server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("tabshell shutdown failed", "error", err)
	}
	if err := bridge.Close(); err != nil {
		slog.Debug("bridge close failed", "error", err)
	}
	factory.Close()
	shutdownBrowser(launcher)
}

func shutdownBrowser(l *browser.Launcher) {
	if l != nil && l.Running() {
		l.Stop()
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
