package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tinkerloft/errdoctor/internal/config"
	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
)

func newTemplatesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage knowledge-base templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.templateStore()
			if err != nil {
				return err
			}
			base, err := knowledge.Load(store)
			if err != nil {
				return err
			}
			category, _ := cmd.Flags().GetString("category")
			templates := base.Templates()
			if category != "" {
				templates = base.ByCategory(category)
			}
			if opts.jsonOut {
				if templates == nil {
					templates = []model.Template{}
				}
				return opts.printJSON(cmd.OutOrStdout(), templates)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tERROR TYPE\tCATEGORY\tSOLUTIONS")
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.ErrorType, t.Category, len(t.Solutions))
			}
			return tw.Flush()
		},
	}
	list.Flags().String("category", "", "Only list templates in this category")

	add := &cobra.Command{
		Use:   "add <file>",
		Short: "Add or override a template from a .yaml or .md file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.templateStore()
			if err != nil {
				return err
			}
			t, err := knowledge.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := store.Write(t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added template %s to %s\n", t.ID, store.BaseDir())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.templateStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed template %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func (o *options) templateStore() (*knowledge.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Knowledge.TemplatesDir == "" {
		return knowledge.DefaultStore(), nil
	}
	return knowledge.NewStore(config.ExpandHome(cfg.Knowledge.TemplatesDir)), nil
}
