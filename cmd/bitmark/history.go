package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/store"
	"bitmark-hq/compiler/pkg/store/retention"
)

// recordView is the JSON listing form of a store record.
type recordView struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`
	Bits      int       `json:"bits"`
	Dropped   int       `json:"dropped"`
	Warnings  int       `json:"warnings"`
	Errors    int       `json:"errors"`
}

func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, cli.NewCommandError("store", err)
	}
	return st, nil
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		limit  int
		since  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored compilations",
		Long: `Inspect the compilations recorded by the watch command. The store is
selected by the store section of the configuration.`,
	}

	list := &cobra.Command{
		Use:   "list [file]",
		Short: "List stored compilations, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			st, err := openStore(config.MustGetConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			q := store.Query{Limit: limit}
			if len(args) == 1 {
				q.File = args[0]
			}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}
			recs, err := st.List(cmd.Context(), q)
			if err != nil {
				return cli.NewCommandError("history list", err)
			}

			views := make([]recordView, 0, len(recs))
			for _, r := range recs {
				views = append(views, recordView{
					ID: r.ID, File: r.File, Hash: r.Hash, CreatedAt: r.CreatedAt,
					Bits: r.Bits, Dropped: r.Dropped, Warnings: r.Warnings, Errors: r.Errors,
				})
			}
			if f == cli.FormatJSON {
				return cli.NewFormatter(f, true).FormatTo(cmd.OutOrStdout(), views)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tCREATED\tBITS\tWARNINGS\tERRORS\tHASH")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%.12s\n",
					v.ID, v.File, v.CreatedAt.Format(time.RFC3339), v.Bits, v.Warnings, v.Errors, v.Hash)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records (0 for all)")
	list.Flags().DurationVar(&since, "since", 0, "only records newer than this duration")

	var pretty bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the document of a stored compilation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(config.MustGetConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return cli.NewCommandError("history show", fmt.Errorf("no record with id %q", args[0]))
			}
			if err != nil {
				return cli.NewCommandError("history show", err)
			}

			doc := rec.Document
			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, doc, "", "  "); err != nil {
					return cli.NewCommandError("history show", err)
				}
				doc = buf.Bytes()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return err
		},
	}
	show.Flags().BoolVar(&pretty, "pretty", false, "indent the document")

	cmd.AddCommand(list, show)
	return cmd
}

func newPruneCmd(root *rootOptions) *cobra.Command {
	var (
		maxAge     time.Duration
		maxRecords int
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old stored compilations",
		Long: `Delete stored compilations older than the retention age or beyond the
retention count, once. The watch command runs the same pruning on the
configured schedule when retention is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustGetConfig()
			rc := cfg.Store.Retention
			if cmd.Flags().Changed("max-age") {
				rc.MaxAge = maxAge
			}
			if cmd.Flags().Changed("max-records") {
				rc.MaxRecords = maxRecords
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			deleted, err := retention.NewPruner(st, rc, nil).Prune(cmd.Context())
			if err != nil {
				return cli.NewCommandError("prune", err)
			}
			root.logger.Info("pruned stored compilations", "deleted", deleted)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records\n", deleted)
			return err
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "delete records older than this (default from config)")
	cmd.Flags().IntVar(&maxRecords, "max-records", 0, "keep only this many newest records (default from config)")
	return cmd
}
