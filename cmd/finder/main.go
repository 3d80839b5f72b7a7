package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"eatery/internal/config"
	"eatery/internal/distance"
	"eatery/internal/env"
	"eatery/internal/export"
	"eatery/internal/finder"
	"eatery/internal/input"
	"eatery/internal/keys"
	internalmodels "eatery/internal/models"
	"eatery/internal/normalize"
	"eatery/internal/render"
	"eatery/internal/search"
	"eatery/internal/storage"
	"eatery/pkg/geo"
	"eatery/pkg/graceful"
	"eatery/pkg/location"
	"eatery/pkg/places"
	"eatery/pkg/routing"
)

type options struct {
	input    string
	sheet    string
	query    string
	radius   float64
	openNow  bool
	unit     string
	mode     string
	imperial bool
	theme    string
	output   string
	format   string
	geocode  string
	upload   bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.input, "input", "", "CSV or XLSX file of reference locations (required)")
	flag.StringVar(&o.sheet, "sheet", "", "XLSX sheet to read, default is the active sheet")
	flag.StringVar(&o.query, "query", "restaurant", "places text query")
	flag.Float64Var(&o.radius, "radius", 1500, "search radius in meters")
	flag.BoolVar(&o.openNow, "open-now", false, "only return places open now")
	flag.StringVar(&o.unit, "unit", "km", "great-circle unit: km, m, mi, nmi, ft, in")
	flag.StringVar(&o.mode, "mode", "driving", "travel mode: driving, walking, bicycling, transit")
	flag.BoolVar(&o.imperial, "imperial", false, "ask the routing provider for imperial distances")
	flag.StringVar(&o.theme, "theme", "default", "map theme: default, dark, positron")
	flag.StringVar(&o.output, "output", "out", "output directory")
	flag.StringVar(&o.format, "format", "csv", "table format: csv or xlsx")
	flag.StringVar(&o.geocode, "geocode", "", "geocode rows with blank coordinates, appending this suffix (e.g. \"Los Angeles, CA\")")
	flag.BoolVar(&o.upload, "upload", false, "upload tables and maps to the results bucket")
	flag.Parse()
	return o
}

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
	opts := parseFlags()
	if opts.input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.PlacesAPIKey == "" {
		log.Fatal("PLACES_API_KEY: ", config.ErrMissing)
	}
	if opts.upload && !cfg.MinIO.Enabled() {
		log.Fatal("-upload needs MINIO_ENDPOINT: ", config.ErrMissing)
	}

	unit, err := geo.ParseUnit(opts.unit)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := routing.ParseMode(opts.mode)
	if err != nil {
		log.Fatal(err)
	}
	theme, err := render.ParseTheme(opts.theme)
	if err != nil {
		log.Fatal(err)
	}
	if opts.format != "csv" && opts.format != "xlsx" {
		log.Fatalf("unknown format %q", opts.format)
	}
	units := routing.Metric
	if opts.imperial {
		units = routing.Imperial
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()
	start := time.Now()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	table, err := input.ReadFile(opts.input, opts.sheet)
	if err != nil {
		log.Fatal(err)
	}
	var geocoder input.Geocoder
	if opts.geocode != "" {
		g := location.NewGeocoder(cfg.NominatimBaseURL, httpClient)
		g.Suffix = opts.geocode
		geocoder = g
	}
	locations, err := input.Extract(ctx, table, cfg.Columns, geocoder)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Read %d reference locations from %s", len(locations), opts.input)
	names := make([]string, len(locations))
	for i, loc := range locations {
		names[i] = loc.Name
	}
	// files and object keys are named by slug
	if err := keys.CheckSlugs(names); err != nil {
		log.Fatal(err)
	}

	f := finder.New(
		search.NewSearcher(places.NewClient(cfg.PlacesAPIKey, cfg.PlacesBaseURL, httpClient)),
		normalize.NewNormalizer(nil),
		distance.NewRouter(routing.NewClient(cfg.PlacesAPIKey, cfg.RoutingBaseURL, httpClient), units),
		finder.Options{
			Query:       search.Query{Text: opts.query, Radius: opts.radius, OpenNow: opts.openNow},
			Unit:        unit,
			Mode:        mode,
			Concurrency: cfg.Concurrency,
			Policy:      cfg.FailurePolicy,
		},
	)
	report, err := f.Run(ctx, locations)
	if err != nil {
		log.Fatal(err)
	}
	for _, failure := range report.Failures {
		log.Printf("Skipped: %v", failure)
	}

	var store *storage.ResultStore
	if opts.upload {
		store, err = storage.NewResultStore(cfg.MinIO)
		if err != nil {
			log.Fatal(err)
		}
		if err := store.EnsureBucket(ctx, ""); err != nil {
			log.Fatal(err)
		}
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		log.Fatal(err)
	}
	if err := writeTables(opts, report.Merged); err != nil {
		log.Fatal(err)
	}
	if store != nil {
		if err := store.PutTables(ctx, report.Merged); err != nil {
			log.Fatal(err)
		}
		log.Printf("Uploaded %d tables to bucket %q", report.Merged.Len(), store.Bucket())
	}
	err = report.Merged.Each(func(name string, t internalmodels.MergedTable) error {
		var page bytes.Buffer
		if err := render.Map(&page, t, render.Options{Theme: theme}); err != nil {
			return err
		}
		path := filepath.Join(opts.output, keys.Slug(name)+".html")
		if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
			return err
		}
		if store == nil {
			return nil
		}
		_, err := store.PutMap(ctx, t.Query, name, page.Bytes())
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nFinished %d locations (%d skipped) into %s, took %s\n",
		report.Merged.Len(), len(report.Failures), opts.output, time.Since(start))
}

func writeTables(opts options, tables *internalmodels.ByLocation[internalmodels.MergedTable]) error {
	if opts.format == "xlsx" {
		return export.WriteXLSX(filepath.Join(opts.output, keys.Slug(opts.query)+".xlsx"), tables)
	}
	return tables.Each(func(name string, t internalmodels.MergedTable) error {
		file, err := os.Create(filepath.Join(opts.output, keys.Slug(name)+".csv"))
		if err != nil {
			return err
		}
		defer file.Close()
		if err := export.WriteCSV(file, t); err != nil {
			return err
		}
		return file.Close()
	})
}
