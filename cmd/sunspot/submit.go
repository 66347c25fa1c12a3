package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/memory"
	"github.com/couchcryptid/sunspot-archive-service/internal/archive"
	"github.com/couchcryptid/sunspot-archive-service/internal/config"
	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/spf13/cobra"
)

var (
	submitImage  string
	submitName   string
	submitMemo   string
	submitCity   string
	submitOutput string
	submitDryRun bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Archive a single photo from the command line",
	Long: `Run one observation through detection, upload and archiving.

With --dry-run the page and images are kept in memory and the resulting
page layout is printed instead of calling Notion and Imgur.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitImage, "image", "", "Path to the sun photo (required)")
	submitCmd.Flags().StringVar(&submitName, "name", "", "Observer name (required)")
	submitCmd.Flags().StringVar(&submitMemo, "memo", "", "Observation memo")
	submitCmd.Flags().StringVar(&submitCity, "city", "", "Observation city (default: from IP)")
	submitCmd.Flags().StringVarP(&submitOutput, "output", "o", "", "Write the annotated image to this path")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Archive into memory instead of Notion")
	_ = submitCmd.MarkFlagRequired("image")
	_ = submitCmd.MarkFlagRequired("name")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	load := config.Load
	if submitDryRun {
		load = config.LoadDryRun
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	image, err := os.ReadFile(submitImage)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewUnregisteredMetrics()

	var (
		b     backends
		store *memory.Store
	)
	if submitDryRun {
		b, store, err = dryRunBackends(cfg)
		if err != nil {
			return err
		}
	} else {
		b = remoteBackends(cfg, metrics, logger)
	}

	a, err := buildApp(cfg, b, logger, metrics)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Submit(cmd.Context(), domain.Submission{
		Name:  submitName,
		Memo:  submitMemo,
		City:  submitCity,
		Image: image,
	})
	if res.Archived.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Archived.URL)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Label)
	fmt.Fprintf(out, "%s | %s | %s\n", res.Observation.DateString(), res.Observation.Location,
		res.Observation.Weather.WeatherText(cfg.WeatherFallbackText))
	if store != nil {
		printPage(out, store, res.Archived.PageID)
	}

	if submitOutput != "" {
		if err := os.WriteFile(submitOutput, res.Annotated, 0o644); err != nil {
			return fmt.Errorf("write annotated image: %w", err)
		}
	}
	return nil
}

// dryRunBackends returns memory stores whose pages carry the schema's slot
// headings, as a database template would.
func dryRunBackends(cfg *config.Config) (backends, *memory.Store, error) {
	schema, err := archive.LoadSchema(cfg.NotionSchemaFile)
	if err != nil {
		return backends{}, nil, err
	}
	if cfg.NotionDatabaseID == "" {
		cfg.NotionDatabaseID = "dry-run"
	}
	store := memory.NewStore(memory.WithTemplate(
		domain.Heading2(schema.Slots.Original),
		domain.Heading2(schema.Slots.Result),
	))
	return backends{store: store, images: memory.NewImages()}, store, nil
}

func printPage(w io.Writer, store *memory.Store, pageID string) {
	page, ok := store.Page(pageID)
	if !ok {
		return
	}
	for _, p := range page.Properties {
		if p.Kind == domain.PropertyNumber {
			fmt.Fprintf(w, "  %s: %g\n", p.Name, p.Number)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Text)
	}
	for _, b := range store.Children(pageID) {
		text, _ := b.FirstRun()
		fmt.Fprintf(w, "  [%s] %s\n", b.Type, text)
		for _, c := range store.Children(b.ID) {
			fmt.Fprintf(w, "    [%s] %s\n", c.Type, c.ImageURL)
		}
	}
}
