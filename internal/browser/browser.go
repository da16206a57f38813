package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Options configures a browser submission run.
type Options struct {
	LoginURL  string
	SubmitURL string
	Codes     []string
	Username  string
	Password  string
	DryRun    bool
	Verbose   bool
	Logger    *log.Logger
}

const stepTimeout = 10 * time.Second

var (
	usernameFields = []string{"username", "email", "Request.Email"}
	passwordFields = []string{"password", "Request.Password"}
	codeFields     = []string{"code", "reward_code"}
)

// SubmitAll drives a headless browser through the login page and then
// submits every code through the on-page form, one at a time. Dry runs
// still log in, then only report what would be submitted.
func SubmitAll(opts Options) error {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	defer cancelAlloc()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := login(ctx, opts); err != nil {
		return err
	}

	if opts.DryRun {
		fmt.Printf("[DRY-RUN] Would submit %d codes via browser\n", len(opts.Codes))
	} else {
		fmt.Printf("Submitting %d codes via browser...\n", len(opts.Codes))
	}
	for _, code := range opts.Codes {
		if opts.DryRun {
			fmt.Println("[DRY-RUN] Would submit:", code)
			continue
		}
		if err := submitOne(ctx, opts, code); err != nil {
			return err
		}
	}
	return nil
}

func login(ctx context.Context, opts Options) error {
	navCtx, cancelNav := context.WithTimeout(ctx, stepTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(opts.LoginURL),
		chromedp.WaitVisible("form", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("loading login page: %w", err)
	}

	userSel, err := fillFirst(ctx, usernameFields, opts.Username, opts)
	if err != nil {
		return fmt.Errorf("filling username: %w", err)
	}
	if userSel == "" {
		return errors.New("could not find username/email field on login page")
	}

	passSel, err := fillFirst(ctx, passwordFields, opts.Password, opts)
	if err != nil {
		return fmt.Errorf("filling password: %w", err)
	}
	if passSel == "" {
		return errors.New("could not find password field on login page")
	}

	if err := chromedp.Run(ctx, chromedp.SendKeys(passSel, kb.Enter, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}
	if err := waitURLChange(ctx, opts.LoginURL); err != nil {
		return err
	}
	if opts.Verbose && opts.Logger != nil {
		var current string
		_ = chromedp.Run(ctx, chromedp.Location(&current))
		opts.Logger.Info("login succeeded", "url", current)
	}
	return nil
}

func submitOne(ctx context.Context, opts Options, code string) error {
	navCtx, cancelNav := context.WithTimeout(ctx, stepTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(opts.SubmitURL),
		chromedp.WaitVisible("form", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("loading submit page: %w", err)
	}

	sel, err := fillFirst(ctx, codeFields, code, opts)
	if err != nil {
		return fmt.Errorf("filling code field: %w", err)
	}
	if sel == "" {
		// Fall back to the first text input on the page.
		sel = `input[type="text"]`
		fbCtx, cancelFB := context.WithTimeout(ctx, 2*time.Second)
		err := chromedp.Run(fbCtx,
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, code, chromedp.ByQuery),
		)
		cancelFB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not find code input: %v\n", err)
			return nil
		}
	}

	if err := chromedp.Run(ctx,
		chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		return fmt.Errorf("submitting code %s: %w", code, err)
	}

	var page string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &page, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("reading result page: %w", err)
	}
	lower := strings.ToLower(page)
	if strings.Contains(lower, "thank") || strings.Contains(lower, "success") {
		fmt.Printf("%s: OK\n", code)
	} else {
		fmt.Printf("%s: FAIL or unclear\n", code)
	}
	return nil
}

// fillFirst tries each candidate input name in order and fills the
// first one present on the page, returning the selector it used. An
// empty selector with a nil error means none of the names matched.
func fillFirst(ctx context.Context, names []string, value string, opts Options) (string, error) {
	for _, name := range names {
		sel := fmt.Sprintf(`input[name=%q]`, name)

		var nodes []*cdp.Node
		probeCtx, cancelProbe := context.WithTimeout(ctx, 2*time.Second)
		err := chromedp.Run(probeCtx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
		cancelProbe()
		if err != nil {
			return "", err
		}
		if len(nodes) == 0 {
			continue
		}

		if err := chromedp.Run(ctx,
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, value, chromedp.ByQuery),
		); err != nil {
			return "", err
		}
		if opts.Verbose && opts.Logger != nil {
			opts.Logger.Info("filled field", "name", name)
		}
		return sel, nil
	}
	return "", nil
}

// waitURLChange polls the tab location until it leaves from, the way a
// login redirect lands somewhere else on success.
func waitURLChange(ctx context.Context, from string) error {
	deadline := time.Now().Add(stepTimeout)
	for time.Now().Before(deadline) {
		var current string
		if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
			return err
		}
		if current != from {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("still on %s after submitting login form", from)
}
