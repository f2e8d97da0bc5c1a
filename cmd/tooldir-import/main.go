package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/iecho/tooldir/internal/catalog"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/server"
)

// Version information
const (
	ToolVersion = "1.0.0"
	ToolName    = "tooldir catalog import"
)

// ImportOptions holds all configuration for an import run
type ImportOptions struct {
	Source string
	Mode   string
	DryRun bool
	JSON   bool
}

// ImportReport is printed when the run finishes
type ImportReport struct {
	Source   string          `json:"source"`
	Duration string          `json:"duration"`
	Success  bool            `json:"success"`
	Result   *catalog.Result `json:"result,omitempty"`
	Issues   []catalog.Issue `json:"issues,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	opts := &ImportOptions{}

	flag.StringVar(&opts.Source, "source", "", "Catalog JSON: local path or s3://bucket/key (required)")
	flag.StringVar(&opts.Mode, "mode", string(catalog.ModeSync), "Import mode: sync (keep upvotes) or fresh (replace catalog)")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Validate and preview only, no changes")
	flag.BoolVar(&opts.JSON, "json", false, "JSON output format")
	version := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", ToolName, ToolVersion)
		os.Exit(0)
	}

	// Keep stdout clean for the report; progress goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	report := run(context.Background(), opts)
	if opts.JSON {
		printJSON(os.Stdout, report)
	} else {
		printReport(os.Stdout, report)
	}
	if !report.Success {
		os.Exit(1)
	}
}

// validateOptions validates command-line options
func validateOptions(opts *ImportOptions) (catalog.Mode, error) {
	if opts.Source == "" {
		return "", errors.New("-source is required")
	}
	return catalog.ParseMode(opts.Mode)
}

func run(ctx context.Context, opts *ImportOptions) *ImportReport {
	start := time.Now()
	report := &ImportReport{Source: opts.Source}
	defer func() {
		report.Duration = time.Since(start).Round(time.Millisecond).String()
	}()

	mode, err := validateOptions(opts)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	tools, err := (&catalog.Loader{}).Load(ctx, opts.Source)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			report.Issues = verr.Issues
		}
		report.Error = err.Error()
		return report
	}

	if opts.DryRun {
		report.Result, _ = catalog.Import(ctx, nil, tools, mode, true)
		report.Success = true
		return report
	}

	cfg, err := config.Load()
	if err != nil {
		report.Error = err.Error()
		return report
	}
	repos, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	defer repos.Cleanup()

	report.Result, err = catalog.Import(ctx, repos.Tools, tools, mode, false)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Success = true
	return report
}

// printReport prints a human readable summary
func printReport(w io.Writer, r *ImportReport) {
	fmt.Fprintln(w, "\n======================================================================")
	switch {
	case r.Success && r.Result != nil && r.Result.DryRun:
		fmt.Fprintln(w, "CATALOG IMPORT PREVIEW (dry run)")
	case r.Success:
		fmt.Fprintln(w, "CATALOG IMPORT SUCCESSFUL")
	default:
		fmt.Fprintln(w, "CATALOG IMPORT FAILED")
	}
	fmt.Fprintln(w, "======================================================================")
	fmt.Fprintf(w, "Source:          %s\n", r.Source)

	if r.Result != nil {
		fmt.Fprintf(w, "Mode:            %s\n", r.Result.Mode)
		fmt.Fprintf(w, "Tools in file:   %d\n", r.Result.Tools)
		if !r.Result.DryRun {
			fmt.Fprintf(w, "Upserted:        %d\n", r.Result.Upserted)
			fmt.Fprintf(w, "Deleted:         %d\n", r.Result.Deleted)
		}
	}
	if r.Error != "" && len(r.Issues) == 0 {
		fmt.Fprintf(w, "Error:           %s\n", r.Error)
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(w, "\n%d validation issues:\n", len(r.Issues))
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
	fmt.Fprintf(w, "Duration:        %s\n", r.Duration)
	fmt.Fprintln(w, "======================================================================")
}

// printJSON prints the report as JSON
func printJSON(w io.Writer, v interface{}) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(v)
}
