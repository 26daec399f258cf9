package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"barfeed/internal/app"
	"barfeed/internal/config"
	"barfeed/internal/logx"
)

func main() {
	logx.Setup("info")

	// Config
	if err := config.LoadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		log.Fatalf("env: %v", err)
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logx.Setup(cfg.LogLevel)

	d, err := app.ProvideDatafeed(cfg, app.ProvideHTTPClient(cfg))
	if err != nil {
		log.Fatalf("datafeed: %v", err)
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	initCtx, cancelInit := context.WithTimeout(context.Background(), timeout)
	if !d.Init(initCtx, "", "") {
		log.WithField("vendor", d.Name()).Warn("datafeed init failed; retrying on first request")
	}
	cancelInit()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(d, timeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
