package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shotlens/shotlens/internal/dribbble"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Fetch player profiles, their shots and their network",
	Long: `Fetch player profiles, their shots and their network.

A player is addressed by numeric id or username: "shotlens player get 1" and
"shotlens player get simplebits" both work.`,
}

var playerGetCmd = &cobra.Command{
	Use:   "get <id|username>",
	Short: "Show a player's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := dribbble.ParsePlayerRef(args[0])
		return runRecord(cmd, 0, func(ctx context.Context, c *dribbble.Client) (*dribbble.Player, error) {
			return c.Player(ctx, ref)
		})
	},
}

// playerListCall is a paged player endpoint as a method expression.
type playerListCall[T any] func(*dribbble.Client, context.Context, dribbble.PlayerRef, dribbble.Page) (*T, error)

// newPlayerListCmd builds one paged player sub-resource command.
func newPlayerListCmd[T any](use, short string, call playerListCall[T]) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <id|username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := dribbble.ParsePlayerRef(args[0])
			page := pageFromFlags(cmd)
			return runRecord(cmd, 0, func(ctx context.Context, client *dribbble.Client) (*T, error) {
				return call(client, ctx, ref, page)
			})
		},
	}
	addRecordFlags(c)
	addPageFlags(c)
	return c
}

func init() {
	rootCmd.AddCommand(playerCmd)
	addRecordFlags(playerGetCmd)

	playerCmd.AddCommand(
		playerGetCmd,
		newPlayerListCmd("shots", "List a player's recent shots", (*dribbble.Client).PlayerShots),
		newPlayerListCmd("following-shots", "List recent shots by the players a player follows", (*dribbble.Client).PlayerFollowingShots),
		newPlayerListCmd("likes", "List shots a player liked", (*dribbble.Client).PlayerLikes),
		newPlayerListCmd("followers", "List a player's followers", (*dribbble.Client).PlayerFollowers),
		newPlayerListCmd("following", "List the players a player follows", (*dribbble.Client).PlayerFollowing),
		newPlayerListCmd("draftees", "List the players a player drafted", (*dribbble.Client).PlayerDraftees),
	)
}
