package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbyne-dev/carbyne/internal/config"
	"github.com/carbyne-dev/carbyne/internal/demo"
	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
	"github.com/carbyne-dev/carbyne/pkg/snapshot"
)

func renderCmd() *cobra.Command {
	var (
		configPath string
		out        string
		upload     bool
		ticks      int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo tree once",
		Long: `Mount the demo tree, advance it, wait for pending teardown and print
the resulting document.

With --upload the document is stored as a snapshot instead: in the
configured S3 bucket when snapshot.bucket is set, else in snapshot.dir.

Examples:
  carbyne render
  carbyne render --ticks=12 --out=demo.html
  carbyne render --upload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			doc, err := renderDemo(ctx, cfg, ticks)
			if err != nil {
				return err
			}

			if upload {
				store, err := snapshotStore(ctx, cfg)
				if err != nil {
					return err
				}
				key, err := snapshot.Capture(ctx, store, cfg.Snapshot.Prefix, doc)
				if err != nil {
					return err
				}
				success("Stored snapshot %s", key)
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return doc.Render(w, doc.Root())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write HTML to file instead of stdout")
	cmd.Flags().BoolVarP(&upload, "upload", "u", false, "Store the HTML as a snapshot")
	cmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "Number of demo ticks to run before rendering")

	return cmd
}

// renderDemo mounts the demo, runs ticks and settles the loop.
func renderDemo(ctx context.Context, cfg *config.Config, ticks int) (*htmldom.Document, error) {
	logger := cfg.Logger(os.Stderr)
	doc := htmldom.New()
	rt := atom.NewRuntime(doc, atom.WithLogger(logger))

	start := time.Now()
	app := demo.New(start, logger)
	if err := rt.Mount(app.Root, doc.Body(), nil); err != nil {
		return nil, err
	}
	for i := 1; i <= ticks; i++ {
		app.Tick(start.Add(time.Duration(i) * cfg.TickDuration()))
	}
	if err := rt.Loop().Settle(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

func snapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	if cfg.Snapshot.Bucket == "" {
		return snapshot.NewFileStore(cfg.SnapshotPath())
	}
	client, err := snapshot.NewS3Client(ctx, snapshot.S3Config{
		Region:    cfg.Snapshot.Region,
		Profile:   cfg.Snapshot.Profile,
		Endpoint:  cfg.Snapshot.Endpoint,
		PathStyle: cfg.Snapshot.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	return snapshot.NewS3Store(client, cfg.Snapshot.Bucket, ""), nil
}
