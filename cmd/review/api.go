package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/spf13/cobra"

	"github.com/boshu2/review/internal/config"
	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/orchestrator"
	"github.com/boshu2/review/internal/runner"
)

var (
	apiCmdLine    string
	apiTimeout    int
	apiModel      string
	apiAPITimeout int
)

var apiCmd = &cobra.Command{
	Use:   "api <instructions> <repo>",
	Short: "Run a single review turn (plan + iteration 1) without the full loop",
	Long: `api is the lightweight entry point: it runs the plan step and a single
review iteration against repo, then optionally runs --cmd once to show the
caller where things stand. It never pushes and never runs the error-fix
loop; use "iterate" for the complete workflow.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		instructions, repo := args[0], args[1]

		overrides := &config.Config{Model: apiModel, APITimeout: apiAPITimeout}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("review api: loading AWS config: %w", err)
		}
		transport := llm.NewBedrockTransport(bedrockruntime.NewFromConfig(awsCfg))

		orch, err := orchestrator.New(repo, cfg, transport, instructions, true, logger)
		if err != nil {
			return err
		}

		if err := orch.Preflight(); err != nil {
			return err
		}
		plan, err := orch.RunPlan(ctx)
		if err != nil {
			return err
		}
		if err := orch.RunIteration(ctx, 1, plan); err != nil {
			return err
		}

		if apiCmdLine != "" {
			timeout := runner.DefaultTimeout
			if apiTimeout > 0 {
				timeout = time.Duration(apiTimeout) * time.Second
			}
			res := runner.Run(ctx, repo, apiCmdLine, timeout)
			fmt.Println(runner.Tail(res.Output, cfg.LogTailChars))
			if !res.OK {
				return errExitCode1
			}
		}
		return nil
	},
}

func init() {
	apiCmd.Flags().StringVar(&apiCmdLine, "cmd", "", "shell command to run once after the iteration")
	apiCmd.Flags().IntVar(&apiTimeout, "timeout", 0, "timeout in seconds for --cmd")
	apiCmd.Flags().StringVar(&apiModel, "model", "", "model identifier (overrides config)")
	apiCmd.Flags().IntVar(&apiAPITimeout, "api-timeout", 0, "per-turn API timeout in seconds")
	rootCmd.AddCommand(apiCmd)
}
