// Package main is the CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinkerloft/errdoctor/internal/app"
	"github.com/tinkerloft/errdoctor/internal/config"
	"github.com/tinkerloft/errdoctor/internal/logging"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	userID     string
	jsonOut    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "errdoctor",
		Short:         "Diagnose Python error descriptions",
		Long:          "CLI for resolving error descriptions against the knowledge base, the cache and live providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("ERRDOCTOR_CONFIG"), "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", os.Getenv("USER"), "User ID for profile and history")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON output")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newDiagnoseCmd(opts),
		newValidateCmd(opts),
		newFingerprintCmd(opts),
		newTemplatesCmd(opts),
		newProfileCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(o.configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withApp builds the full application for the duration of fn.
func (o *options) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(o.logLevel, "text", cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(cmd.Context(), a)
}

func (o *options) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
