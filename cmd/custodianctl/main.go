// Command custodianctl runs custodian maintenance tasks against the
// configured stores without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"custodian/internal/app"
	"custodian/internal/platform/config"
	"custodian/internal/platform/logger"
)

var (
	configPath string
	jsonOutput bool
	appConfig  config.Config
	log        *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "custodianctl",
	Short: "Operate the custodian audit, compliance and DSR services.",
	Long: `custodianctl runs the same jobs the server schedules, on demand, against
the stores named in the configuration file and CUSTODIAN_* environment.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = cfg
		log = slog.New(logger.NewHandler(os.Stderr, logger.Config{Format: "text", Level: cfg.Log.Level}))
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			jsonOutput = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "print JSON instead of a table")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withApp builds the services for one command and releases them afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, appConfig, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release resources", "error", err)
		}
	}()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
