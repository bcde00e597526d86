package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ajramos/hostinbox/internal/db"
	"github.com/ajramos/hostinbox/internal/render"
	"github.com/ajramos/hostinbox/internal/seed"
	"github.com/ajramos/hostinbox/internal/services"
	"github.com/ajramos/hostinbox/internal/tui"
	"github.com/ajramos/hostinbox/internal/version"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

const envHelp = `Environment Variables:
  HOSTINBOX_CONFIG       Override default config file path
  HOSTINBOX_CREDENTIALS  Override default Gmail credentials file path
  HOSTINBOX_TOKEN        Override default Gmail token file path

For all other settings (store, import, LLM, keys), edit the config file.`

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath      string
	credentialsPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hostinbox",
		Short: "Guest messages for your rental properties, with AI reply drafts.",
		Long: "Browse guest messages per property, import new ones from Gmail or IMAP,\n" +
			"and draft replies with a local or hosted LLM.\n\n" + envHelp,
		Example: `
hostinbox                          # open the inbox
hostinbox seed demo.yaml           # load demo properties
hostinbox properties               # list properties
hostinbox import lake-house        # pull new guest mail for a property
hostinbox remove lake-house        # drop a property and its drafts
hostinbox --config custom.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to JSON configuration file (default: ~/.config/hostinbox/config.json)")
	cmd.PersistentFlags().StringVar(&opts.credentialsPath, "credentials", "",
		"Path to OAuth client credentials JSON (default: ~/.config/hostinbox/credentials.json)")

	addSeed(cmd, opts)
	addProperties(cmd, opts)
	addImport(cmd, opts)
	addRemove(cmd, opts)
	addVersion(cmd)
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	env, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	deps := tui.Deps{Properties: env.repo}
	if source, err := newMessageSource(ctx, env.cfg, opts); err != nil {
		log.Printf("Warning: import disabled: %v", err)
	} else {
		deps.Importer = services.NewImportService(env.repo, source, nil)
	}
	deps.Drafts = newDraftService(env.cfg, env.store)

	return tui.NewApp(env.cfg, deps).Run()
}

func addSeed(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load properties and guest messages from a YAML file",
		Long: "Load properties and guest messages from a YAML file into the local store.\n" +
			"Properties are matched by id; messages already stored are skipped, so seeding twice is harmless.",
		Example: `
hostinbox seed internal/seed/testdata/demo.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			env, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := seed.Apply(cmd.Context(), env.repo, file)
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"Seeded %d properties, %d new messages\n", res.Properties, res.Messages)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// propertyRow is the JSON shape of the properties command
type propertyRow struct {
	ID       string `json:"id"`
	Name     string `json:"property_name"`
	Messages int    `json:"messages"`
	Latest   string `json:"latest,omitempty"`
}

func addProperties(topLevel *cobra.Command, opts *rootOptions) {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"props", "ls"},
		Short:   "List stored properties",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			props, err := env.repo.ListProperties(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now()
			rows := make([]propertyRow, 0, len(props))
			for _, p := range props {
				row := propertyRow{ID: p.ID, Name: p.Name, Messages: len(p.Messages)}
				if len(p.Messages) > 0 {
					row.Latest = render.RelativeTime(p.Messages[0].Timestamp.Time(now), now)
				}
				rows = append(rows, row)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printProperties(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON.")
	topLevel.AddCommand(cmd)
}

func printProperties(w io.Writer, rows []propertyRow) {
	if len(rows) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "no properties; run `hostinbox seed FILE` to add some")
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold("ID"), bold("NAME"), bold("MESSAGES"), bold("LATEST"))
	for _, r := range rows {
		latest := r.Latest
		if latest == "" {
			latest = "-"
		}
		tbl.AddRow(r.ID, r.Name, r.Messages, latest)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func addImport(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "import PROPERTY_ID",
		Short: "Import new guest messages for a property",
		Long: "Fetch messages about a property from the configured provider (import.provider:\n" +
			"gmail or imap) and store the ones not seen before.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			property, err := env.repo.GetProperty(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			source, err := newMessageSource(cmd.Context(), env.cfg, opts)
			if err != nil {
				return err
			}
			imported, err := services.NewImportService(env.repo, source, nil).Import(cmd.Context(), property.ID)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					return fmt.Errorf("%w; check the %s credentials", err, source.Name())
				}
				return err
			}

			w := cmd.OutOrStdout()
			if len(imported) == 0 {
				_, _ = fmt.Fprintf(w, "No new messages for %s\n", property.Name)
				return nil
			}
			_, _ = color.New(color.FgGreen).Fprintf(w, "Imported %d messages into %s\n", len(imported), property.Name)
			for _, m := range imported {
				_, _ = fmt.Fprintf(w, "  %s  %s\n", render.FitWidth(m.Sender, 18), render.Preview(m.Content, 60))
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:     "remove PROPERTY_ID",
		Aliases: []string{"rm"},
		Short:   "Remove a property with its messages and cached reply drafts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			property, err := env.repo.GetProperty(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := env.repo.DeleteProperty(cmd.Context(), property.ID); err != nil {
				return err
			}
			if err := services.NewCacheService(db.NewDraftStore(env.store)).ClearCache(cmd.Context(), property.ID); err != nil {
				log.Printf("Warning: %v", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d messages)\n", property.Name, len(property.Messages))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionString())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersionString())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version line.")
	topLevel.AddCommand(cmd)
}
