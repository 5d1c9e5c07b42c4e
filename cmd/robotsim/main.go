package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	router "github.com/dkeye/Remote/internal/adapters/http"
	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/app/robot"
	"github.com/dkeye/Remote/internal/config"
	"github.com/dkeye/Remote/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fs := pflag.NewFlagSet("robotsim", pflag.ExitOnError)
	fs.String("sim.host", "0.0.0.0", "listen host")
	fs.Int("sim.port", 8080, "listen port")
	fs.String("ws_path", "/ws", "WebSocket path")
	fs.String("log.level", "info", "log level")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closer.Close()

	rb := robot.New(cfg.Sim.ActionDuration, 16)
	reg := app.NewRegistry()
	go rb.Run(ctx)

	r := router.SetupRouter(ctx, cfg, rb, reg)
	addr := fmt.Sprintf("%s:%d", cfg.Sim.Host, cfg.Sim.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("ws_path", cfg.WSPath).Msg("robot simulator started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	reg.CancelAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
