package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/shepard5/zyn-scanner/internal/decode"
	"github.com/shepard5/zyn-scanner/internal/extract"
	"github.com/shepard5/zyn-scanner/internal/scan"
	"github.com/shepard5/zyn-scanner/internal/ui"
	"github.com/shepard5/zyn-scanner/internal/video"
)

func main() {
	// Parse command line flags
	videoFlag := flag.String("video", "", "Path to input video file (required)")
	intervalFlag := flag.Int("interval", scan.DefaultInterval, "Process every Nth frame")
	patternFlag := flag.String("pattern", extract.DefaultPattern, "Regex pattern for codes, applied case-insensitively")
	outputFlag := flag.String("output", "", "Write unique codes to this file")
	fullURLFlag := flag.Bool("full-url", false, "Store the full decoded URL instead of just the code segment")
	debugFlag := flag.Bool("debug", false, "Show a live dashboard with per-frame decode stats")
	upsampleFlag := flag.Int("upsample", 1, "Upsample factor for frames before QR decode")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if *debugFlag {
		logger.SetLevel(log.DebugLevel)
	}

	if *videoFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: --video is required")
		flag.Usage()
		os.Exit(2)
	}
	if *intervalFlag < 1 {
		fmt.Fprintln(os.Stderr, "Error: --interval must be at least 1")
		os.Exit(2)
	}

	pattern, err := extract.CompilePattern(*patternFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid regex pattern: %v\n", err)
		os.Exit(1)
	}

	// Backend selection happens once, before any frames are read.
	decoder := decode.Select(logger)

	src, err := video.Open(*videoFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unable to open video %q: %v\n", *videoFlag, err)
		os.Exit(1)
	}
	defer src.Close()

	extractor := &extract.Extractor{
		Decoder:  decoder,
		Pattern:  pattern,
		FullURL:  *fullURLFlag,
		Upsample: *upsampleFlag,
		Logger:   logger,
	}

	fmt.Println("Scanning video for codes...")

	var dash *ui.DebugView
	if *debugFlag && stdoutIsTerminal() {
		dash = ui.StartDebugView(*videoFlag, string(decoder.Backend()), *intervalFlag)
		logger.SetOutput(dash.LogWriter(os.Stderr))
	}

	runner := &scan.Runner{
		Source:    src,
		Interval:  *intervalFlag,
		Extractor: extractor,
		Logger:    logger,
		Events: scan.Events{
			Frame: func(index, codes int) {
				if dash != nil && dash.Active() {
					dash.Frame(index, codes)
				} else if *debugFlag {
					logger.Debug("frame examined", "frame", index, "codes", codes)
				}
			},
			Found: func(code string) {
				if dash != nil && dash.Active() {
					dash.Found(code)
					return
				}
				ui.PrintFound(code)
			},
		},
	}
	result := runner.Run()
	if dash != nil {
		dash.Close()
	}

	fmt.Printf("Total unique codes: %d\n", len(result.Codes))
	if *outputFlag != "" {
		if err := scan.WriteCodes(*outputFlag, result.Codes); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to output file: %v\n", err)
		} else {
			ui.PrintSuccess("Codes written to " + *outputFlag)
		}
	} else {
		for _, code := range result.Codes {
			fmt.Println(code)
		}
	}
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
