package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
	redisclient "github.com/vietddude/requeue/internal/infra/redis"
	"github.com/vietddude/requeue/internal/infra/storage"
	"github.com/vietddude/requeue/internal/infra/storage/postgres"
)

var redriveLimit int

var redriveCmd = &cobra.Command{
	Use:   "redrive [queue]",
	Short: "Push dead letters of a queue back onto the queue",
	Args:  cobra.ExactArgs(1),
	Run:   runRedrive,
}

func init() {
	redriveCmd.Flags().IntVar(&redriveLimit, "limit", 100, "maximum number of dead letters to redrive")
	rootCmd.AddCommand(redriveCmd)
}

// Pusher appends messages to a queue.
type Pusher interface {
	Push(ctx context.Context, queue string, msg *domain.Message) error
}

// Redrive pushes up to limit dead letters of a queue back onto the
// queue and removes them from the store. Returns how many were
// redriven and how many were considered.
func Redrive(ctx context.Context, repo storage.DeadLetterRepository, pusher Pusher, queue string, limit int) (int, int, error) {
	dls, err := repo.List(ctx, queue, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list dead letters: %w", err)
	}

	redriven := 0
	for _, dl := range dls {
		id, err := uuid.Parse(dl.MessageID)
		if err != nil {
			slog.Warn("Skipping dead letter with invalid message id", "id", dl.ID, "error", err)
			continue
		}

		msg := &domain.Message{
			ID:       id,
			Queue:    dl.Queue,
			Payload:  dl.Payload,
			Headers:  dl.Headers,
			Attempts: dl.Attempts,
		}
		if err := pusher.Push(ctx, queue, msg); err != nil {
			return redriven, len(dls), fmt.Errorf("failed to push message %s: %w", dl.MessageID, err)
		}
		if err := repo.Delete(ctx, dl.ID); err != nil {
			return redriven, len(dls), fmt.Errorf("failed to delete dead letter %s: %w", dl.ID, err)
		}
		redriven++
	}

	return redriven, len(dls), nil
}

func runRedrive(cmd *cobra.Command, args []string) {
	queue := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Println("Redrive requires a configured database")
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	redriven, total, err := Redrive(ctx, postgres.NewDeadLetterRepo(db), client, queue, redriveLimit)
	if err != nil {
		slog.Error("Redrive aborted", "queue", queue, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Redriven %d of %d dead letters to queue %s\n", redriven, total, queue)
}
