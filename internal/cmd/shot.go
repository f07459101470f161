package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shotlens/shotlens/internal/core/dispatch"
	"github.com/shotlens/shotlens/internal/dribbble"
)

var shotCmd = &cobra.Command{
	Use:   "shot",
	Short: "Fetch shots, rebounds, comments and curated lists",
}

var shotGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one shot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		return runRecord(cmd, id, func(ctx context.Context, c *dribbble.Client) (*dribbble.Shot, error) {
			return c.Shot(ctx, id)
		})
	},
}

var shotReboundsCmd = &cobra.Command{
	Use:   "rebounds <id>",
	Short: "List rebounds of a shot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		page := pageFromFlags(cmd)
		return runRecord(cmd, id, func(ctx context.Context, c *dribbble.Client) (*dribbble.ShotList, error) {
			return c.ShotRebounds(ctx, id, page)
		})
	},
}

var shotCommentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "List comments on a shot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseShotID(args[0])
		if err != nil {
			return err
		}
		page := pageFromFlags(cmd)
		return runRecord(cmd, id, func(ctx context.Context, c *dribbble.Client) (*dribbble.CommentList, error) {
			return c.ShotComments(ctx, id, page)
		})
	},
}

var shotListCmd = &cobra.Command{
	Use:   "list <debuts|everyone|popular>",
	Short: "Show a curated shot list",
	Args:  cobra.ExactArgs(1),
	ValidArgs: func() []string {
		names := make([]string, 0, len(dribbble.ShotListTypes))
		for _, t := range dribbble.ShotListTypes {
			names = append(names, string(t))
		}
		return names
	}(),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := dribbble.ParseShotListType(args[0])
		if err != nil {
			return err
		}
		page := pageFromFlags(cmd)
		return runRecord(cmd, 0, func(ctx context.Context, c *dribbble.Client) (*dribbble.ShotList, error) {
			return c.Shots(ctx, list, page)
		})
	},
}

func init() {
	rootCmd.AddCommand(shotCmd)
	shotCmd.AddCommand(shotGetCmd, shotReboundsCmd, shotCommentsCmd, shotListCmd)

	for _, c := range []*cobra.Command{shotGetCmd, shotReboundsCmd, shotCommentsCmd, shotListCmd} {
		addRecordFlags(c)
	}
	for _, c := range []*cobra.Command{shotReboundsCmd, shotCommentsCmd, shotListCmd} {
		addPageFlags(c)
	}
}

func parseShotID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: shot id must be an integer, got %q", dispatch.ErrInvalidArgument, value)
	}
	return id, nil
}
