package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/launchpad/internal/gateway"
	"github.com/rahul/launchpad/internal/mcpserver"
	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/onboarding"
	"github.com/rahul/launchpad/internal/orchestrator"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
)

var Version = "dev"

func main() {
	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	var cfgPath string
	rootCmd := &cobra.Command{
		Use:           "launchpad",
		Short:         "Launchpad - AI business formation planner",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Config file (.yaml or .json)")

	rootCmd.AddCommand(runCmd(&cfgPath))
	rootCmd.AddCommand(botCmd(&cfgPath))
	rootCmd.AddCommand(mcpCmd(&cfgPath))
	rootCmd.AddCommand(seedCmd(&cfgPath))
	rootCmd.AddCommand(historyCmd(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd(cfgPath *string) *cobra.Command {
	var in orchestrator.SessionInputs
	var answersPath string
	var noFallback bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Complete one onboarding from an answers file and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := onboarding.LoadAnswers(answersPath)
			if err != nil {
				return err
			}
			in.Answers = answers

			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			// stdout carries the result.
			a.logger.SetOutput(os.Stderr)
			if err := a.withWorkflow(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var out any
			if noFallback {
				out = a.engine.Run(ctx, in)
			} else {
				out = a.service.Complete(ctx, in)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&answersPath, "answers", "a", "", "Onboarding answers file (YAML or JSON)")
	cmd.Flags().StringVarP(&in.UserID, "user", "u", "", "User id that owns the business")
	cmd.Flags().StringVar(&in.SessionID, "session", "", "Onboarding session id to record on the plan")
	cmd.Flags().StringVar(&in.ModelProvider, "provider", "", "Override the model provider for this run")
	cmd.Flags().StringVar(&in.ModelName, "model", "", "Override the model name for this run")
	cmd.Flags().StringVar(&in.APIKey, "api-key", "", "Override the provider API key for this run")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Print the workflow result without the template fallback")
	_ = cmd.MarkFlagRequired("answers")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func botCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tgCfg, ok := a.cfg.GetTelegramConfig()
			if !ok {
				return fmt.Errorf("telegram gateway is not enabled or token is missing")
			}
			if err := a.withWorkflow(); err != nil {
				return err
			}

			timeout := time.Duration(a.cfg.Orchestrator.RunTimeoutSeconds) * time.Second
			var messenger gateway.Messenger
			messenger, err = gateway.NewTelegramGateway(tgCfg.Token, a.service, timeout)
			if err != nil {
				return err
			}

			interactive := observability.IsInteractive()
			if interactive {
				observability.PrintBanner()
				observability.InitializeTerminal()
				defer observability.CleanupTerminal()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				if err := messenger.Start(); err != nil {
					return fmt.Errorf("gateway: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				return messenger.Stop()
			})
			if interactive {
				g.Go(func() error {
					return every(ctx, time.Second, observability.PrintLiveStatus)
				})
			}
			g.Go(func() error {
				return every(ctx, 30*time.Second, func() {
					observability.Heartbeat()
					a.logger.LogHeartbeat()
				})
			})

			err = g.Wait()
			log.Println("[ EXIT ] gateway stopped")
			return err
		},
	}
}

func mcpCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tool contracts over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			// stdout carries the protocol.
			a.logger.SetOutput(os.Stderr)

			srv, err := mcpserver.NewServer(a.cfg.App.Name, Version, a.registry, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, os.Stdin, os.Stdout)
		},
	}
}

func seedCmd(cfgPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load task templates from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.SeedTemplates(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("failed to seed templates: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d templates from %s\n", n, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/templates.yaml", "Templates file")
	return cmd
}

func historyCmd(cfgPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Print the conversation recorded for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			messages, err := a.store.GetHistory(args[0], limit)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				return fmt.Errorf("no messages recorded for run %s", args[0])
			}
			for _, m := range messages {
				for _, p := range m.Parts {
					if text, ok := p.(llms.TextContent); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "--- %s ---\n%s\n\n", m.Role, text.Text)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum messages")
	return cmd
}

// every calls fn on each tick until ctx is done.
func every(ctx context.Context, d time.Duration, fn func()) error {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}
