package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"auraweb-intake/internal/client/intake"
	"auraweb-intake/internal/client/storeapi"

	"github.com/spf13/cobra"
)

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	var (
		file   string
		attach []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "submit --file draft.yaml",
		Short: "Submit an intake draft written as YAML",
		Long: `Submit an intake draft written as YAML.

The file maps wire field names to values, for example:

  packageId: business
  businessName: Tomoca Coffee
  phone: "+251 911 000 111"
  services: [Espresso, Beans]
  socialLinks: {instagram: "@tomoca"}

Blank fields fall back to placeholders. --attach adds logo or photo files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				form := intake.NewForm(a.engine, a.log)
				if err := form.ApplyYAML(raw); err != nil {
					return err
				}
				for _, path := range attach {
					content, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					form.Attach(storeapi.Attachment{Filename: filepath.Base(path), Content: content})
				}
				for form.Step() < intake.LastStep {
					form.Advance()
				}

				if dryRun {
					return writeJSON(cmd.OutOrStdout(), form.Finalize())
				}
				created, err := form.Submit(ctx)
				if err != nil {
					return fmt.Errorf("submission failed, nothing was saved: %s", storeapi.Message(err))
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s for %s (%d files)\n", created.ID, created.BusinessName, len(created.ImageURLs))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML draft file")
	cmd.Flags().StringSliceVar(&attach, "attach", nil, "files to upload with the submission")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the finalized record instead of sending it")
	return cmd
}
