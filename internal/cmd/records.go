package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/config"
	"github.com/shotlens/shotlens/internal/core/store"
	"github.com/shotlens/shotlens/internal/dribbble"
	"github.com/shotlens/shotlens/internal/observability"
)

const noDataMessage = "No data: the call was rate limited, not found, or the API did not answer."

type fetchFunc[T any] func(ctx context.Context, client *dribbble.Client) (*T, error)

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", dribbble.DefaultPageNumber, "Page number (starts at 1)")
	cmd.Flags().Int("per-page", dribbble.DefaultPerPage, "Records per page")
}

// pageFromFlags reads --page/--per-page; the client validates the values.
func pageFromFlags(cmd *cobra.Command) dribbble.Page {
	number, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	return dribbble.Page{Number: number, PerPage: perPage}
}

func addRecordFlags(cmd *cobra.Command) {
	addOutputFlags(cmd)
	cmd.Flags().Bool("archive", false, "Also save fetched records to the archive store")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runRecord builds a session from the loaded config and emits one fetch.
// shotID scopes archived comments and is ignored for other records.
func runRecord[T any](cmd *cobra.Command, shotID int64, fetch fetchFunc[T]) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openSession(cfg, cliLogger())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return emitRecord(cmd, s, shotID, fetch)
}

func emitRecord[T any](cmd *cobra.Command, s *session, shotID int64, fetch fetchFunc[T]) error {
	ctx := commandContext(cmd)

	record, err := fetch(ctx, s.client)
	if err != nil {
		return err
	}
	if record == nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), noDataMessage)
		return nil
	}

	if archive, _ := cmd.Flags().GetBool("archive"); archive {
		if err := archiveRecord(ctx, s.cfg.Store, shotID, record); err != nil {
			return err
		}
	}

	return writeRendered(cmd, s.cfg, record)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, error) {
	db, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// archiveRecord upserts record into the archive store.
func archiveRecord(ctx context.Context, cfg config.StoreConfig, shotID int64, record any) error {
	db, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	var saved int
	switch v := record.(type) {
	case *dribbble.Shot:
		saved = 1
		err = db.SaveShots(ctx, *v)
	case *dribbble.ShotList:
		saved = len(v.Shots)
		err = db.SaveShots(ctx, v.Shots...)
	case *dribbble.Player:
		saved = 1
		err = db.SavePlayers(ctx, *v)
	case *dribbble.PlayerList:
		saved = len(v.Players)
		err = db.SavePlayers(ctx, v.Players...)
	case *dribbble.CommentList:
		if shotID < 1 {
			return fmt.Errorf("comments need a shot id to be archived")
		}
		saved = len(v.Comments)
		err = db.SaveComments(ctx, shotID, v.Comments...)
	default:
		return fmt.Errorf("cannot archive %T", record)
	}
	if err != nil {
		return err
	}

	if observability.CLILogger != nil {
		observability.CLILogger.Debug("Archived records", zap.Int("count", saved), zap.String("type", fmt.Sprintf("%T", record)))
	}
	return nil
}
