package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/spf13/cobra"

	"github.com/boshu2/review/internal/config"
	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/orchestrator"
)

var (
	iterModel        string
	iterAPITimeout   int
	iterIterations   int
	iterBranchPrefix string
	iterRemote       string
	iterNoPush       bool
)

var iterateCmd = &cobra.Command{
	Use:   "iterate <instructions> <repo>",
	Short: "Run the full plan + review-iteration + error-fix loop",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		instructions, repo := args[0], args[1]

		overrides := &config.Config{
			Model:        iterModel,
			APITimeout:   iterAPITimeout,
			BranchPrefix: iterBranchPrefix,
			Remote:       iterRemote,
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("review iterate: loading AWS config: %w", err)
		}
		transport := llm.NewBedrockTransport(bedrockruntime.NewFromConfig(awsCfg))

		if iterIterations < 1 || iterIterations > 3 {
			return fmt.Errorf("review iterate: --iterations must be between 1 and 3")
		}

		orch, err := orchestrator.New(repo, cfg, transport, instructions, iterNoPush, logger)
		if err != nil {
			return err
		}
		orch.Iterations = iterIterations

		if err := orch.Run(ctx); err != nil {
			if ctx.Err() == context.Canceled {
				return errInterrupted
			}
			return err
		}
		return nil
	},
}

func init() {
	iterateCmd.Flags().StringVar(&iterModel, "model", "", "model identifier (overrides config)")
	iterateCmd.Flags().IntVar(&iterAPITimeout, "api-timeout", 0, "per-turn API timeout in seconds")
	iterateCmd.Flags().IntVar(&iterIterations, "iterations", 3, "number of review iterations to run (1-3)")
	iterateCmd.Flags().StringVar(&iterBranchPrefix, "branch-prefix", "", "branch name prefix for iteration branches")
	iterateCmd.Flags().StringVar(&iterRemote, "remote", "", "git remote to push to")
	iterateCmd.Flags().BoolVar(&iterNoPush, "no-push", false, "skip the final push")
	rootCmd.AddCommand(iterateCmd)
}
