package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/requeue/internal/core/config"
	redisclient "github.com/vietddude/requeue/internal/infra/redis"
	"github.com/vietddude/requeue/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current status of all configured queues",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
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

	var db *postgres.DB
	if cfg.Database.URL != "" {
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = db.Close()
		}()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "QUEUE\tACK\tDEPTH\tDEAD LETTERS")

	for _, q := range cfg.Queues {
		depth, err := client.Depth(ctx, q.Name)
		if err != nil {
			slog.Warn("Failed to read queue depth", "queue", q.Name, "error", err)
		}

		deadCount := 0
		if db != nil {
			repo := postgres.NewDeadLetterRepo(db)
			deadCount, err = repo.Count(ctx, q.Name)
			if err != nil {
				slog.Warn("Failed to count dead letters", "queue", q.Name, "error", err)
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", q.Name, q.Ack.Type, depth, deadCount)
	}

	_ = w.Flush()
}
