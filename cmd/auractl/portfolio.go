package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"auraweb-intake/internal/domain/portfolio"

	"github.com/spf13/cobra"
)

func newPortfolioCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage showcase items",
	}
	cmd.AddCommand(newPortfolioListCommand(opts), newPortfolioAddCommand(opts), newPortfolioRemoveCommand(opts))
	return cmd
}

func newPortfolioListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List portfolio items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				items, err := a.console.Portfolio(ctx)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tURL")
				for _, it := range items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Title, it.Category, it.URL)
				}
				return tw.Flush()
			})
		},
	}
}

func newPortfolioAddCommand(opts *rootOptions) *cobra.Command {
	var it portfolio.Item

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a portfolio item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				created, err := a.console.AddPortfolioItem(ctx, it)
				if err != nil {
					return friendly(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d %s\n", created.ID, created.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&it.Title, "title", "", "item title")
	cmd.Flags().StringVar(&it.Category, "category", "", "category, e.g. E-commerce")
	cmd.Flags().StringVar(&it.URL, "url", "", "live site URL")
	cmd.Flags().StringVar(&it.Description, "description", "", "one-line description")
	return cmd
}

func newPortfolioRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a portfolio item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.console.DeletePortfolioItem(ctx, uint(id)); err != nil {
					return friendly(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
				return nil
			})
		},
	}
}
