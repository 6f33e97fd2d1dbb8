package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/pkg/grpcclient"
)

var healthcheckTarget string

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe a running instance through the gRPC health service",
	Long: `Exits non-zero unless the instance reports SERVING. Intended as a
container liveness probe; requires grpc.port to be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := healthcheckTarget
		if target == "" {
			if cfg.GRPC.Port <= 0 {
				return fmt.Errorf("grpc.port is not set and no --target given")
			}
			target = hostPort("127.0.0.1", cfg.GRPC.Port)
		}

		ctx := cmd.Context()
		err := grpcclient.CheckHealth(ctx, grpcclient.ClientConfig{
			Target:         target,
			RequestTimeout: 2,
			MaxRetries:     2,
			RetryDelay:     int((200 * time.Millisecond).Milliseconds()),
		}, cfg.ServiceName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "SERVING")
		return nil
	},
}

func init() {
	healthcheckCmd.Flags().StringVar(&healthcheckTarget, "target", "", "gRPC address, defaults to 127.0.0.1:<grpc.port>")
}
