package cmd

import (
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the rate gate state for the current window",
	Long: `Show how many calls the current window has used.

With the memory backend each process starts a fresh count, so this is only
informative for the redis backend, where processes share one window.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openSession(cfg, cliLogger())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		state, err := s.Quota(commandContext(cmd))
		if err != nil {
			return err
		}
		return writeRendered(cmd, cfg, state)
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
	addOutputFlags(quotaCmd)
}
