package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shotlens/shotlens/internal/dribbble"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect records saved with --archive",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived shots, players, comments or counts",
	Long: `List records saved with --archive. The archive is never consulted when
fetching from the API.

Kinds:
  shots     most recently archived shots (default)
  players   most recently archived players
  comments  comments archived for --shot
  counts    number of archived records per kind`,
	RunE: runArchiveList,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)

	addOutputFlags(archiveListCmd)
	archiveListCmd.Flags().String("kind", "shots", "Record kind: shots|players|comments|counts")
	archiveListCmd.Flags().Int("limit", 50, "Maximum records to list")
	archiveListCmd.Flags().Int64("shot", 0, "Shot id for --kind comments")
	archiveListCmd.Flags().String("sort", "recent", "Order: recent|id")
}

func runArchiveList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	shotID, _ := cmd.Flags().GetInt64("shot")
	order, _ := cmd.Flags().GetString("sort")
	if limit < 1 {
		return fmt.Errorf("--limit must be greater than zero")
	}
	byID, err := parseArchiveSort(order)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	var value any
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "shots", "shot", "":
		value, err = db.ListShots(ctx, limit)
	case "players", "player":
		value, err = db.ListPlayers(ctx, limit)
	case "comments", "comment":
		if shotID < 1 {
			return fmt.Errorf("--shot is required for --kind comments")
		}
		var comments []dribbble.Comment
		comments, err = db.ShotComments(ctx, shotID)
		value = &dribbble.CommentList{Comments: comments}
	case "counts", "count":
		value, err = db.Counts(ctx)
	default:
		return fmt.Errorf("unknown archive kind %q", kind)
	}
	if err != nil {
		return err
	}
	if byID {
		sortArchivedByID(value)
	}

	return writeRendered(cmd, cfg, value)
}

func parseArchiveSort(order string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "recent":
		return false, nil
	case "id":
		return true, nil
	default:
		return false, fmt.Errorf("unknown --sort %q (expected recent or id)", order)
	}
}

// sortArchivedByID orders listed records by ascending ID in place.
func sortArchivedByID(value any) {
	switch v := value.(type) {
	case []dribbble.Shot:
		slices.SortFunc(v, dribbble.Shot.Compare)
	case []dribbble.Player:
		slices.SortFunc(v, dribbble.Player.Compare)
	case *dribbble.CommentList:
		slices.SortFunc(v.Comments, dribbble.Comment.Compare)
	}
}
