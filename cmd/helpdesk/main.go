package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"Helpdesk/internal/app"
	"Helpdesk/internal/config"
	"Helpdesk/internal/logging"
)

const (
	appName = "helpdesk"
	Version = "0.1.0"
)

var errMemoryStore = errors.New("database driver is memory; indexed data would be lost on exit, configure postgres (database.driver or DATABASE_DSN)")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Helpdesk knowledge base, chat assistant and ticket desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $HELPDESK_CONFIG)")

	load := func() config.Config {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}
	open := func(cmd *cobra.Command) (*app.Application, error) {
		cfg := load()
		return app.New(cmd.Context(), cfg, logging.New(cfg.Logging))
	}
	// openIndexer is open for one-shot indexing commands, which are pointless
	// against a store that vanishes when they exit.
	openIndexer := func(cmd *cobra.Command) (*app.Application, error) {
		cfg := load()
		if !cfg.Database.Persistent() {
			return nil, errMemoryStore
		}
		return app.New(cmd.Context(), cfg, logging.New(cfg.Logging))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Run(cmd.Context())
		},
	})

	var follow bool
	crawl := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Index a page, or a whole site with --follow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openIndexer(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Crawl(cmd.Context(), args[0], follow)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d page(s)\n", res.Count)
			for _, title := range res.Pages {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", title)
			}
			return nil
		},
	}
	crawl.Flags().BoolVar(&follow, "follow", false, "follow same-host links up to the page budget")
	cmd.AddCommand(crawl)

	cmd.AddCommand(&cobra.Command{
		Use:   "ingest-pdf <file>",
		Short: "Index the text of a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openIndexer(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			doc, err := application.IngestPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s as document %d\n", doc.Filename, doc.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}
