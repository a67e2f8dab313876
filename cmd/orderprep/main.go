package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/pantera/orderprep/backend-go/internal/export"
	"github.com/pantera/orderprep/backend-go/internal/fetch"
	"github.com/pantera/orderprep/backend-go/internal/prefs"
	"github.com/pantera/orderprep/backend-go/internal/service"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "orderprep",
		Usage: "Aggregate accounting exports into the order preparation sheet",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Run one aggregation pass over a data directory and write the flat CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory holding the exported CSV sources",
						Value:   "./data",
						EnvVars: []string{"SOURCES_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output CSV path (defaults to stdout)",
					},
					&cli.StringFlag{
						Name:  "skus",
						Usage: "Comma-separated SKU list to restrict the export",
					},
					&cli.BoolFlag{
						Name:  "include-current-month",
						Usage: "End the 24-month window at the current month instead of the previous one",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "sales-fallback",
						Usage: "Sales file name tried when the current-month export is absent",
						Value: "SalesHistory_Updated_Oct2025.csv",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runExport(c *cli.Context) error {
	names := fetch.DefaultNames()
	names.SalesFallback = c.String("sales-fallback")

	fetcher := fetch.NewLocalFetcher(c.String("data-dir"))
	snapshots := service.NewSnapshotService(fetcher, names, prefs.NewMemoryStore(), c.Bool("include-current-month"))

	snap := snapshots.Load(c.Context)
	if len(snap.Stats.MissingSources) > 0 {
		log.Printf("warning: missing sources: %s", strings.Join(snap.Stats.MissingSources, ", "))
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var skus []string
	for _, s := range strings.Split(c.String("skus"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skus = append(skus, s)
		}
	}

	if err := export.WriteCSV(out, snap, export.Options{SKUs: skus}); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	log.Printf("exported %d items over %d months", snap.Stats.Items, len(snap.Months))
	return nil
}
