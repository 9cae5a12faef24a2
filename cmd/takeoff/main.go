package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"takeoff/internal/annotation/calibration"
	"takeoff/internal/annotation/models"
	"takeoff/internal/annotation/session"
	"takeoff/internal/common/config"
	"takeoff/internal/documents/client"
	"takeoff/internal/documents/pages"
	"takeoff/pkg/logger"
)

const usage = `usage: takeoff <command> [flags]

commands:
  pages      list the sheet sizes of a drawing PDF
  calibrate  print the metres-per-pixel factor for a page and scale
  summary    print per-tag totals of a stored document
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log := logger.New(logger.WithPrefix("[takeoff] "), logger.WithOutput(os.Stderr))
	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "pages":
		err = runPages(os.Args[2:])
	case "calibrate":
		err = runCalibrate(os.Args[2:])
	case "summary":
		err = runSummary(os.Args[2:], cfg, log)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("%s: %v", os.Args[1], err)
	}
}

func runPages(args []string) error {
	fs := flag.NewFlagSet("pages", flag.ExitOnError)
	file := fs.String("file", "", "Path to PDF file")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	all, err := pages.Read(*file)
	if err != nil {
		return err
	}
	for _, p := range all {
		status := "default table"
		if p.Calibrated {
			status = "calibrated"
		}
		fmt.Printf("page %d: %.1f x %.1f pt -> %s (%s, %d scales)\n",
			p.Number, p.WidthPt, p.HeightPt, calibration.ViewportKey(p.Viewport), status, len(calibration.Scales(p.Viewport)))
	}
	return nil
}

func runCalibrate(args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ExitOnError)
	file := fs.String("file", "", "Path to PDF file")
	page := fs.Int("page", 1, "1-based page number")
	scale := fs.String("scale", "", "Drawing scale ratio, e.g. 100 for 1:100")
	fs.Parse(args)
	if *file == "" || *scale == "" {
		return fmt.Errorf("-file and -scale are required")
	}

	v, err := pages.Viewport(*file, *page)
	if err != nil {
		return err
	}
	factor, exact := calibration.Factor(strings.TrimPrefix(*scale, "1:"), v)

	source := "sheet table"
	if !exact {
		source = "fallback"
	}
	fmt.Printf("sheet:  %s\n", calibration.ViewportKey(v))
	fmt.Printf("scale:  1:%s\n", strings.TrimPrefix(*scale, "1:"))
	fmt.Printf("factor: %.8f m/px (%s)\n", factor, source)
	return nil
}

func runSummary(args []string, cfg *config.Config, log *logger.Logger) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	baseURL := fs.String("url", cfg.DocumentsURL, "Documents service URL")
	docID := fs.String("doc", "", "Document id")
	token := fs.String("token", "", "Bearer token (optional)")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("-doc is required")
	}
	log.SetVerbose(*verbose)

	ctx := context.Background()
	store := client.New(*baseURL, client.WithToken(*token))
	doc, err := store.Load(ctx, *docID)
	if err != nil {
		return err
	}
	log.Debug("loaded %s (%s) from %s", doc.ID, doc.Kind, *baseURL)

	opts := session.Options{
		AutosaveDelay: cfg.Editor.AutosaveDelay(),
		SaveTimeout:   cfg.Editor.SaveTimeoutDuration(),
		DragThreshold: cfg.Editor.DragThresholdPX,
		Logger:        log,
	}

	var summary session.Summary
	switch doc.Kind {
	case models.KindMeasurement:
		s, err := session.NewMeasurementSession(store, doc, opts)
		if err != nil {
			return err
		}
		defer s.Close(ctx)
		summary = s.Summary()
	case models.KindFixture:
		s, err := session.NewFixtureSession(store, doc, opts)
		if err != nil {
			return err
		}
		defer s.Close(ctx)
		summary = s.Summary()
	default:
		return fmt.Errorf("document %s has unknown kind %q", doc.ID, doc.Kind)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("%s (%s)\n", doc.Name, summary.Kind)
	for _, g := range summary.Groups {
		name := g.Name
		if name == "" {
			name = "(untagged)"
		}
		switch summary.Kind {
		case models.KindMeasurement:
			mark := ""
			if g.Estimated {
				mark = " *"
			}
			fmt.Printf("  %-24s %4d  %10.2f m%s\n", name, g.Count, g.Meters, mark)
		default:
			fmt.Printf("  %-24s %4d\n", name, g.Count)
		}
	}
	if summary.Kind == models.KindMeasurement {
		fmt.Printf("  %-24s %4d  %10.2f m\n", "total", summary.Count, summary.Meters)
	} else {
		fmt.Printf("  %-24s %4d\n", "total", summary.Count)
	}
	return nil
}
