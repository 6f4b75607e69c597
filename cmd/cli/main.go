package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/analytics"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/gcs"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/ingest"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/insights"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Cashflow Analytics CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Run the full analytics pipeline over a CSV and print the grounding payload")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "Path to a local transactions CSV")
	gcsURI := fs.String("gcs-uri", "", "gs:// URI of a transactions CSV (alternative to -file)")
	horizon := fs.Int("horizon", 12, "Forecast horizon in weeks")
	fs.Parse(os.Args[2:])

	if (*file == "") == (*gcsURI == "") {
		log.Fatal().Msg("Exactly one of -file or -gcs-uri is required")
	}
	if *horizon < 1 {
		log.Fatal().Msg("-horizon must be a positive integer")
	}

	var data []byte
	var err error
	if *file != "" {
		data, err = os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to read CSV")
		}
	} else {
		data, err = gcs.Download(context.Background(), *gcsURI)
		if err != nil {
			log.Fatal().Err(err).Str("gcs_uri", *gcsURI).Msg("Failed to download CSV")
		}
	}

	txs, err := ingest.ParseCSV(bytes.NewReader(data), "local")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse CSV")
	}

	payload := insights.BuildGroundingPayload("local", txs, *horizon)

	out := struct {
		insights.GroundingPayload
		Weekly interface{} `json:"weekly"`
	}{
		GroundingPayload: payload,
		Weekly:           analytics.WeeklySeries(txs),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}
