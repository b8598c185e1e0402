package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/bill"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/ocr"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("billscan")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		engineType   = fs.StringLong("ocr-engine", "tesseract", "OCR engine: 'tesseract' (library) or 'tesseract-cli' (binary)")
		tesseractBin = fs.StringLong("tesseract-bin", "tesseract", "Path to the tesseract binary for the CLI engine")
		workers      = fs.IntLong("workers", 0, "Preprocessing worker count (0 = all CPUs)")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize OCR engine based on type
	var engine ocr.Engine
	switch *engineType {
	case "tesseract":
		slog.Info("Initializing tesseract library engine...")
		engine = ocr.NewTesseract()
	case "tesseract-cli":
		slog.Info("Initializing tesseract CLI engine...", "binary", *tesseractBin)
		engine = ocr.NewCLI(*tesseractBin)
	default:
		slog.Error("Invalid OCR engine", "engine", *engineType, "valid", "tesseract or tesseract-cli")
		os.Exit(1)
	}

	// Initialize scanning pipeline
	var opts []scanning.Option
	if *workers > 0 {
		opts = append(opts, scanning.WithWorkers(*workers))
	}
	pipeline := scanning.NewPipeline(engine, opts...)
	defer pipeline.Close()

	// Initialize service and server
	service := bill.NewService(pipeline)
	basicAuth := bill.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := bill.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
