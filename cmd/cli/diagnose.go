package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinkerloft/errdoctor/internal/app"
	"github.com/tinkerloft/errdoctor/internal/diagnose"
	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/pattern"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

func newDiagnoseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <description...>",
		Short: "Diagnose an error description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Service.Diagnose(ctx, opts.userID, text)
				var rej *diagnose.RejectionError
				if errors.As(err, &rej) {
					rejected := fmt.Errorf("%s (rule %s)", rej.Result.Reason, rej.Rule)
					if opts.jsonOut {
						if werr := opts.printJSON(cmd.OutOrStdout(), rej.Result); werr != nil {
							return errors.Join(rejected, fmt.Errorf("write output: %w", werr))
						}
					}
					return rejected
				}
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return opts.printJSON(cmd.OutOrStdout(), res)
				}
				printDiagnostic(cmd, res.Diagnostic)
				return nil
			})
		},
	}
}

func printDiagnostic(cmd *cobra.Command, d model.DiagnosticRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", d.VoiceText)
	fmt.Fprintf(out, "Source: %s  Confidence: %.2f\n\n", d.Source, d.Confidence)
	text := d.CardText
	if text == "" {
		text = knowledge.CardText(d.ErrorType, d.Solutions, d.Explanation, d.Causes)
	}
	fmt.Fprintln(out, text)
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <description...>",
		Short: "Check whether a description is specific enough to diagnose",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := validate.Default(pattern.DefaultMatcher()).Evaluate(strings.Join(args, " "))
			if opts.jsonOut {
				return opts.printJSON(cmd.OutOrStdout(), v)
			}
			if v.IsValid {
				fmt.Fprintf(cmd.OutOrStdout(), "valid (specificity %.2f)\n", v.Score)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rejected by %s: %s\n", v.Rule, v.Reason)
			return nil
		},
	}
}

func newFingerprintCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <description...>",
		Short: "Print the cache fingerprint of a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized := model.Normalize(strings.Join(args, " "))
			fp := fingerprint.Of(normalized)
			if opts.jsonOut {
				return opts.printJSON(cmd.OutOrStdout(), map[string]string{"normalized": normalized, "fingerprint": fp})
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return nil
		},
	}
}
