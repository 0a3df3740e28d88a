package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/docbridge/editor-connector/pkg/tools"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ScheduleDailyCleanup sets up a cron job that purges expired anonymous
// submission markers and sweeps empty submission directories every day.
func ScheduleDailyCleanup(ctx context.Context, submissions repositories.SubmissionRepository, storageRoot string, logger zerolog.Logger) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "cleanup", func(ctx context.Context) error {
			return RunCleanup(ctx, submissions, storageRoot, logger)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}

// RunCleanup executes both maintenance tasks and returns the first error.
func RunCleanup(ctx context.Context, submissions repositories.SubmissionRepository, storageRoot string, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		purged, err := submissions.PurgeExpiredMarkers(ctx, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("failed to purge submission markers")
			return err
		}
		if purged > 0 {
			logger.Info().Int64("purged", purged).Msg("purged expired submission markers")
		}
		return nil
	})

	g.Go(func() error {
		return sweepEmptyDirs(filepath.Join(storageRoot, "submissions"))
	})

	return g.Wait()
}

// sweepEmptyDirs removes per-media submission directories that no longer
// hold any files.
func sweepEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		children, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			if err := os.Remove(dir); err != nil {
				return err
			}
		}
	}
	return nil
}
