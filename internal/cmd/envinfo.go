package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/config"
	"github.com/shotlens/shotlens/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration, including the rate gate settings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== shotlens Environment Information ===")
		log.Info("")
		log.Info("Application:")
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  Platform:   " + runtime.GOOS + "/" + runtime.GOARCH)
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log.Info("API:")
		log.Info("  Base URL:           " + cfg.API.BaseURL)
		log.Info(fmt.Sprintf("  Throw On Limit:     %t", cfg.API.ThrowOnRateLimit))
		log.Info(fmt.Sprintf("  HTTP Timeout:       %s", cfg.HTTP.Timeout))
		log.Info("")

		log.Info("Rate Gate:")
		log.Info("  Backend:            "+cfg.RateLimit.Backend, zap.String("backend", cfg.RateLimit.Backend))
		log.Info(fmt.Sprintf("  Quota:              %d per %s", cfg.RateLimit.Quota, cfg.RateLimit.Window))
		if cfg.RateLimit.Backend == config.BackendRedis {
			log.Info("  Redis Addr:         " + cfg.RateLimit.Redis.Addr)
			log.Info("  Redis Key Prefix:   " + cfg.RateLimit.Redis.KeyPrefix)
		}
		log.Info("")

		log.Info("Archive:")
		log.Info("  DB Driver:          " + cfg.Store.Driver)
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  DB URL:             " + cfg.Store.URL)
		} else {
			log.Info("  DB Path:            " + cfg.Store.Path)
		}
		log.Info("")

		log.Info("Server:")
		log.Info(fmt.Sprintf("  Listen:             %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Metrics:            enabled=%t port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("  Log Level:          " + cfg.Logging.Level)
		log.Info("  Config File:        " + config.DefaultConfigPath())
		log.Info("")
		log.Info("=== End Environment Information ===")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
