package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/viant/hitl"
	"github.com/viant/hitl/internal/bench"
)

var rootCmd = &cobra.Command{
	Use:   "hitlbench",
	Short: "Human-in-the-loop registry tools",
	Long: `hitlbench exercises the wait/notify registry used by workers that pause for
approvals and clarifications.
- compare: run concurrent waits under a sleep-and-check loop and under the registry, and print wake-ups and latency.
- config: load a configuration file, apply defaults and print the effective settings.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(configCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HITL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func compareCmd() *cobra.Command {
	defaults := bench.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare polling with event-driven waiting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := bench.Config{
				Requests:     viper.GetInt("requests"),
				Delay:        viper.GetDuration("delay"),
				PollInterval: viper.GetDuration("poll-interval"),
				Timeout:      viper.GetDuration("timeout"),
			}
			if cfg.Requests <= 0 {
				return fmt.Errorf("--requests must be > 0")
			}
			return compare(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("requests", defaults.Requests, "concurrent waits per approach")
	cmd.Flags().Duration("delay", defaults.Delay, "time until each wait is answered")
	cmd.Flags().Duration("poll-interval", defaults.PollInterval, "sleep between checks in the polling approach")
	cmd.Flags().Duration("timeout", defaults.Timeout, "per wait timeout")
	for _, name := range []string{"requests", "delay", "poll-interval", "timeout"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func compare(ctx context.Context, cfg bench.Config) error {
	polling, err := bench.Polling(ctx, cfg)
	if err != nil {
		return fmt.Errorf("polling run failed: %w", err)
	}
	eventDriven, err := bench.EventDriven(ctx, cfg)
	if err != nil {
		return fmt.Errorf("event-driven run failed: %w", err)
	}
	results := []*bench.Result{polling, eventDriven}
	if viper.GetBool("json") {
		return printJSON(results)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Approach", "Requests", "Elapsed", "Wake-ups", "Max lag"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Approach, r.Requests, r.Elapsed.Round(100*time.Microsecond), r.Wakeups, r.MaxLag.Round(time.Microsecond)})
	}
	if eventDriven.Elapsed > 0 {
		tw.AppendFooter(table.Row{"speedup", "", fmt.Sprintf("%.2fx", float64(polling.Elapsed)/float64(eventDriven.Elapsed)), "", ""})
	}
	tw.Render()
	return nil
}

func configCmd() *cobra.Command {
	var URL string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := hitl.DefaultConfig()
			if URL != "" {
				var err error
				if cfg, err = hitl.LoadConfig(cmd.Context(), URL); err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(cfg)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	cmd.Flags().StringVar(&URL, "url", "", "config URL, e.g. file:///etc/hitl.yaml")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
