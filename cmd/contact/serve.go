package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/pkg/app"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:       cfg.ServiceName,
		Version:           cfg.Version,
		Environment:       cfg.Environment,
		Enabled:           cfg.Tracing.Enabled,
		CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
		SamplingRate:      cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return err
	}

	appCtx, cleanup, err := initService(cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return err
	}

	engine, err := newEngine(appCtx)
	if err != nil {
		cleanup()
		_ = shutdownTracing(ctx)
		return err
	}

	b := app.NewBuilder(cfg.ServiceName).
		WithHTTP(hostPort(cfg.HTTP.Host, cfg.HTTP.Port), engine,
			time.Duration(cfg.HTTP.ReadTimeout)*time.Second,
			time.Duration(cfg.HTTP.WriteTimeout)*time.Second).
		WithCleanup(func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				logger.Warn(sctx, "tracing shutdown failed", "error", err)
			}
		}).
		WithCleanup(cleanup)
	if cfg.GRPC.Port > 0 {
		b.WithGRPC(hostPort(cfg.GRPC.Host, cfg.GRPC.Port))
	}

	logger.Info(ctx, "starting service",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)
	return b.Build().Run(ctx)
}
