package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinkerloft/errdoctor/internal/app"
	"github.com/tinkerloft/errdoctor/internal/model"
)

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the user's environment profile",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return opts.printProfile(cmd, a.Service.Profile(ctx, opts.userID))
			})
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Update the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			osName, _ := cmd.Flags().GetString("os")
			pm, _ := cmd.Flags().GetString("package-manager")
			editor, _ := cmd.Flags().GetString("editor")
			if osName == "" && pm == "" && editor == "" {
				return errors.New("at least one of --os, --package-manager or --editor is required")
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Service.UpdateProfile(ctx, opts.userID, osName, pm, editor)
				if err != nil {
					return err
				}
				return opts.printProfile(cmd, p)
			})
		},
	}
	set.Flags().String("os", "", "Operating system (linux, windows, macos)")
	set.Flags().String("package-manager", "", "Package manager (pip, conda, poetry)")
	set.Flags().String("editor", "", "Editor (vscode, pycharm, sublime, vim, jupyter)")

	cmd.AddCommand(get, set)
	return cmd
}

func (o *options) printProfile(cmd *cobra.Command, p model.UserProfile) error {
	if o.jsonOut {
		return o.printJSON(cmd.OutOrStdout(), p)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OS:              %s\n", p.OS)
	fmt.Fprintf(out, "Package manager: %s\n", p.PackageManager)
	fmt.Fprintf(out, "Editor:          %s\n", p.Editor)
	if !p.Configured {
		fmt.Fprintln(out, "(default profile)")
	}
	return nil
}

func newHistoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent diagnoses",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries, err := a.Service.History(ctx, opts.userID, limit)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					if entries == nil {
						entries = []model.HistoryEntry{}
					}
					return opts.printJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No history.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "WHEN\tERROR TYPE\tSOURCE\tCONFIDENCE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", e.CreatedAt.Local().Format(time.DateTime), e.ErrorType, e.Source, e.Confidence)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int("limit", 10, "Maximum number of entries")
	return cmd
}
