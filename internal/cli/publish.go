package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
	redisclient "github.com/vietddude/requeue/internal/infra/redis"
)

var publishCmd = &cobra.Command{
	Use:   "publish [queue] [payload]",
	Short: "Publish a message onto a queue",
	Args:  cobra.ExactArgs(2),
	Run:   runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	msg := domain.NewMessage(args[0], []byte(args[1]))
	msg.EnqueuedAt = time.Now().Unix()

	if err := client.Push(context.Background(), args[0], msg); err != nil {
		slog.Error("Failed to publish message", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Published %s to queue %s\n", msg.ID, args[0])
}
