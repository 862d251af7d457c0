package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptoon-golang/server/internal/config"
	"promptoon-golang/server/internal/gateway"
	"promptoon-golang/server/internal/keycodec"
	"promptoon-golang/server/internal/logger"
	"promptoon-golang/server/internal/netcheck"
	"promptoon-golang/server/internal/promptcfg"
	"promptoon-golang/server/internal/store"
	"promptoon-golang/server/internal/upstream"
	"promptoon-golang/server/internal/upstream/doubao"
	"promptoon-golang/server/internal/upstream/gemini"
)

func main() {
	cfg := config.Get()
	logger.Init()

	logger.Info("初始化环境检查...")
	if err := netcheck.Preflight(cfg); err != nil {
		logger.Error("启动网络检查失败: %v", err)
		os.Exit(1)
	}

	codec, err := keycodec.New(cfg.EncryptionKey)
	if err != nil {
		logger.Error("加密密钥无效: %v", err)
		os.Exit(1)
	}

	prompts := promptcfg.Load(cfg.PromptDir)

	g := gateway.New(codec, prompts, store.New(cfg.UploadDir), map[string]upstream.Client{
		"gemini": gemini.NewClient(cfg),
		"doubao": doubao.NewClient(cfg),
	})

	logger.Banner(cfg.Port, cfg.Proxy)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           gateway.NewRouter(g),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		pprofAddr := "localhost:6060"
		logger.Info("pprof server listening on http://%s/debug/pprof/", pprofAddr)
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			logger.Error("pprof server error: %v", err)
		}
	}()

	logger.Info("Server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	logger.Info("Server stopped")
}
