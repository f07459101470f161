package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the configuration loads and the rate gate answers. With the redis
backend this reaches the shared counter store. No API call is made.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		log.Info("Running health check...")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log.Info("✅ Configuration loaded")

		s, err := openSession(cfg, cliLogger())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		ctx, cancel := context.WithTimeout(commandContext(cmd), 5*time.Second)
		defer cancel()
		state, err := s.Quota(ctx)
		if err != nil {
			return err
		}
		log.Info("✅ Rate gate reachable",
			zap.String("backend", cfg.RateLimit.Backend),
			zap.Int("remaining", state.Remaining()))

		log.Info("✅ All health checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
