package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/shepard5/zyn-scanner/internal/browser"
	"github.com/shepard5/zyn-scanner/internal/ui"
	"github.com/shepard5/zyn-scanner/internal/webform"
)

const (
	defaultLoginURL  = "https://us.zyn.com/login/"
	defaultSubmitURL = "https://us.zyn.com/ZYNRewards/"
	defaultCodesFile = "codes.txt"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	loginURLFlag := flag.String("login-url", defaultLoginURL, "URL of the login page")
	submitURLFlag := flag.String("submit-url", defaultSubmitURL, "URL of the code submission page")
	codesFileFlag := flag.String("codes-file", defaultCodesFile, "File containing codes to submit (one per line)")
	usernameFlag := flag.String("username", "", "Account username/email (or set ZYN_USERNAME env var)")
	passwordFlag := flag.String("password", "", "Account password (or set ZYN_PASSWORD env var)")
	dryRunFlag := flag.Bool("dry-run", false, "Don't actually submit, just print codes")
	browserFlag := flag.Bool("browser", false, "Use headless browser automation for submission")
	verboseFlag := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	username := *usernameFlag
	if username == "" {
		username = os.Getenv("ZYN_USERNAME")
	}
	password := *passwordFlag
	if password == "" {
		password = os.Getenv("ZYN_PASSWORD")
	}
	username, password, err := ui.PromptForCredentials(username, password)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	codes, err := readCodes(*codesFileFlag)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	if len(codes) == 0 {
		ui.PrintError(fmt.Sprintf("no codes found in %s", *codesFileFlag))
		os.Exit(1)
	}

	if *browserFlag {
		err := browser.SubmitAll(browser.Options{
			LoginURL:  *loginURLFlag,
			SubmitURL: *submitURLFlag,
			Codes:     codes,
			Username:  username,
			Password:  password,
			DryRun:    *dryRunFlag,
			Verbose:   *verboseFlag,
			Logger:    logger,
		})
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				fmt.Fprintln(os.Stderr, "Error: no Chrome or Chromium browser found; install one to use --browser")
			} else {
				fmt.Fprintf(os.Stderr, "Browser automation error: %v\n", err)
			}
			os.Exit(1)
		}
		return
	}

	client, err := webform.NewClient(*verboseFlag, logger)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	var loginErr error
	if err := spinner.New().
		Title("Logging in...").
		Action(func() { loginErr = client.Login(*loginURLFlag, username, password) }).
		Run(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	if loginErr != nil {
		ui.PrintError(loginErr.Error())
		os.Exit(1)
	}

	submitCodes(client, *submitURLFlag, codes, *dryRunFlag, os.Stdout)
}

// submitCodes runs every code through the form in order, one status
// line each. A dry run prints what would be sent and posts nothing; a
// failing code never stops the rest.
func submitCodes(client *webform.Client, submitURL string, codes []string, dryRun bool, out io.Writer) {
	fmt.Fprintf(out, "Submitting %d codes...\n", len(codes))
	for _, code := range codes {
		if dryRun {
			fmt.Fprintln(out, "[DRY-RUN] Would submit:", code)
			continue
		}
		ok, err := client.SubmitCode(submitURL, code)
		switch {
		case err != nil:
			fmt.Fprintf(out, "%s: ERROR (%v)\n", code, err)
		case ok:
			fmt.Fprintf(out, "%s: OK\n", code)
		default:
			fmt.Fprintf(out, "%s: FAIL\n", code)
		}
	}
}

// readCodes loads the codes file, one code per line, skipping blanks.
func readCodes(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading codes file: %w", err)
	}
	var codes []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			codes = append(codes, line)
		}
	}
	return codes, nil
}
