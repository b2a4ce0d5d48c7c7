// Package main 命令行问答客户端，直接调用检索与入库流程
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"club-knowledge-api/internal/config"
	einoobs "club-knowledge-api/internal/observability/eino"
	"club-knowledge-api/internal/wire"
	"club-knowledge-api/pkg/logger"
)

var (
	agent   *wire.Agent
	cleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "club-agent",
	Short: "Ask questions about club events from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// 命令行输出给人看，日志只保留告警
		level := cfg.Observability.Logging.Level
		if level == "info" || level == "debug" {
			level = "warn"
		}
		logger.Init(level, "text")
		einoobs.Init()

		a, c, err := wire.InitializeAgent(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize agent: %w", err)
		}
		agent, cleanup = a, c
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		cleanup()
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newAskCmd(), newReplCmd(), newAddEventCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
