// Package main provides the CLI entry point for xlsxread.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bigabdoul/fast-xlsx-reader/internal/logging"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/output"
)

var (
	outputPath   string
	format       string
	sheet        string
	allSheets    bool
	noHeader     bool
	headerPrefix string
	lowerCase    bool
	backwards    bool
	pretty       bool
	logLevel     string
	logFormat    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlsxread [input file]",
		Short: "Stream spreadsheet rows to JSON or CSV",
		Long: `xlsxread reads a workbook (.xlsx or legacy .xls) row by row with bounded
memory and emits the rows as a JSON array or CSV stream.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringVar(&format, "format", "json", "Output format: json, csv")
	rootCmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name or 0-based index (default: first sheet)")
	rootCmd.Flags().BoolVar(&allSheets, "all-sheets", false, "Read every sheet in workbook order")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first row as data, not column names")
	rootCmd.Flags().StringVar(&headerPrefix, "header-prefix", xlsxreader.DefaultHeaderPrefix, "Prefix for synthesized column names")
	rootCmd.Flags().BoolVar(&lowerCase, "lowercase-headers", false, "Fold header names to lower case")
	rootCmd.Flags().BoolVar(&backwards, "backwards", false, "Read rows from the last row to the first")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON when writing to stdout")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Optional .env overlay for defaults; absence is not an error.
	_ = godotenv.Load()
	logging.Setup(envDefault("XLSXREAD_LOG_LEVEL", logLevel), envDefault("XLSXREAD_LOG_FORMAT", logFormat))

	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	switch xlsxreader.Format(format) {
	case xlsxreader.FormatJSON, xlsxreader.FormatCSV:
	default:
		return fmt.Errorf("invalid format: %s (must be json or csv)", format)
	}

	opts := xlsxreader.DefaultOptions()
	opts.Input = inputPath
	opts.Output = outputPath
	opts.Format = xlsxreader.Format(format)
	opts.Sheet = sheet
	opts.AllSheets = allSheets
	opts.HeaderPrefix = headerPrefix
	opts.LowerCaseHeaders = lowerCase
	opts.Backwards = backwards
	if noHeader {
		hasHeader := false
		opts.HasHeader = &hasHeader
	}
	resolveStdout(&opts, os.Stdout)

	res, err := xlsxreader.Read(opts)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	slog.Info("read complete", "input", inputPath, "rows", res.Rows)

	if outputPath == "" && res.Records != nil {
		var data []byte
		if pretty {
			data, err = json.MarshalIndent(res.Records, "", "  ")
		} else {
			data, err = json.Marshal(res.Records)
		}
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Println(string(data))
	}

	return nil
}

// resolveStdout configures opts for stdout emission when no output path is
// set: csv streams straight through a sink on w, json buffers the records so
// run can print them.
func resolveStdout(opts *xlsxreader.Options, w io.Writer) {
	if opts.Output != "" {
		return
	}
	if opts.FormatOrDefault() == xlsxreader.FormatCSV {
		opts.Sink = output.NewCSVSink(w)
		return
	}
	opts.UseMemoryForItems = true
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
