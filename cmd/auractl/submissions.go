package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"auraweb-intake/internal/client/admin"
	"auraweb-intake/internal/domain/submissions"

	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var status, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want submissions.Status
			if status != "" {
				s, err := submissions.ParseStatus(status)
				if err != nil {
					return err
				}
				want = s
			}
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if err := a.load(ctx, cmd.ErrOrStderr()); err != nil {
					return err
				}
				list := admin.Filter(a.console.Submissions(), want, search)
				if opts.Format == "json" {
					return writeJSON(out, list)
				}
				printTable(out, list)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", `only this status, e.g. "In Progress"`)
	cmd.Flags().StringVar(&search, "search", "", "business name or phone substring")
	return cmd
}

func printTable(w io.Writer, list []submissions.Submission) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPACKAGE\tBUSINESS\tPHONE\tSUBMITTED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Status, s.PackageID, s.BusinessName, s.Phone, s.SubmittedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.load(ctx, cmd.ErrOrStderr()); err != nil {
					return err
				}
				s, ok := a.engine.Get(args[0])
				if !ok {
					return fmt.Errorf("no submission %q", args[0])
				}
				return writeJSON(cmd.OutOrStdout(), s)
			})
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var override bool

	cmd := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a submission to another status",
		Long: `Move a submission to another status.

Forward moves are always allowed, backward moves need --override, and
Completed or Cancelled submissions never move again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := submissions.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.load(ctx, cmd.ErrOrStderr()); err != nil {
					return err
				}
				s, err := a.console.SetStatus(ctx, args[0], to, override)
				if err != nil {
					return friendly(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", s.ID, s.Status)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&override, "override", false, "allow a backward move")
	return cmd
}

func newNoteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note ID TEXT",
		Short: "Set the admin notes of a submission (empty text clears)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.load(ctx, cmd.ErrOrStderr()); err != nil {
					return err
				}
				text := args[1]
				if _, err := a.console.Edit(ctx, args[0], admin.Edit{AdminNotes: &text}); err != nil {
					return friendly(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Notes saved for %s\n", args[0])
				return nil
			})
		},
	}
}

func newPayCommand(opts *rootOptions) *cobra.Command {
	var notify bool

	cmd := &cobra.Command{
		Use:   "pay ID",
		Short: "Create a deposit payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				link, err := a.console.CreatePaymentLink(ctx, args[0], notify)
				if err != nil {
					return friendly(err)
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), link)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s deposit\n%s\ntx_ref: %s\n", link.Amount, link.Currency, link.CheckoutURL, link.TxRef)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&notify, "notify", false, "email the link to the customer")
	return cmd
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify TXREF",
		Short: "Check a payment with the gateway and record the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				v, err := a.console.VerifyPayment(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), v)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "payment %s: %s (%s, %s package; order %s is %s)\n",
					v.TxRef, v.Status, v.BusinessName, v.PackageID, v.SubmissionID, v.OrderStatus)
				return nil
			})
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				st, err := a.console.Stats(ctx)
				if err != nil {
					return friendly(err)
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), st)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "total\t%d\n", st.TotalSubmissions)
				fmt.Fprintf(tw, "today\t%d\n", st.TodaySubmissions)
				fmt.Fprintf(tw, "pending review\t%d\n", st.PendingReview)
				fmt.Fprintf(tw, "in progress\t%d\n", st.InProgress)
				fmt.Fprintf(tw, "completed\t%d\n", st.Completed)
				fmt.Fprintf(tw, "revenue\t%d %s\n", st.TotalRevenue, submissions.Currency)
				fmt.Fprintf(tw, "pending payments\t%d\n", st.PendingPayments)
				return tw.Flush()
			})
		},
	}
}

func newTrackCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track ORDER_ID PHONE",
		Short: "Show an order's progress as the customer sees it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				tr, err := a.api.Track(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), tr)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s): %s\n", tr.BusinessName, tr.OrderID, tr.Status)
				for _, step := range tr.Steps {
					fmt.Fprintf(out, "  [%s] %s\n", step.State, step.Label)
				}
				return nil
			})
		},
	}
}
