package webform

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"
)

// Client drives the login-then-submit flow over plain HTTP. Cookies
// persist across requests so the login session carries into the code
// submissions.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
	verbose    bool
}

// NewClient creates a client with a fresh cookie jar and a 30 second timeout
func NewClient(verbose bool, logger *log.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ParseForm fetches pageURL and scrapes the first <form>: its resolved
// action URL and every named input with its preset value.
func (c *Client) ParseForm(pageURL string) (*Form, error) {
	resp, err := c.httpClient.Get(pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	sel := doc.Find("form").First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("no <form> found at %s", pageURL)
	}

	form := &Form{}
	if action := sel.AttrOr("action", ""); action == "" {
		form.Action = pageURL
	} else {
		resolved, err := resp.Request.URL.Parse(action)
		if err != nil {
			return nil, fmt.Errorf("form action %q: %w", action, err)
		}
		form.Action = resolved.String()
	}
	sel.Find("input").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		form.put(name, input.AttrOr("value", ""))
	})
	return form, nil
}

// Login submits the login form at loginURL with the given credentials.
// Field names cover both generic forms and the Request.* naming the Zyn
// site uses. Landing back on a login page is only a warning; the form
// handler may still have set a session cookie.
func (c *Client) Login(loginURL, username, password string) error {
	form, err := c.ParseForm(loginURL)
	if err != nil {
		return err
	}
	if !form.SetFirst(username, "username", "email", "Request.Email") {
		return errors.New("could not find username/email field in login form")
	}
	if !form.SetFirst(password, "password", "Request.Password") {
		return errors.New("could not find password field in login form")
	}

	resp, err := c.postForm(form, loginURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if strings.Contains(final, loginURL) || strings.Contains(strings.ToLower(final), "login") {
		c.warn("login may have failed (still on login page)", "url", final)
	} else if c.verbose {
		c.info("login succeeded", "redirected", final)
	}
	return nil
}

// SubmitCode submits one reward code through the form at submitURL and
// sniffs the response for a thank-you/success marker. False with a nil
// error means the submission went through but the outcome is unclear.
func (c *Client) SubmitCode(submitURL, code string) (bool, error) {
	form, err := c.ParseForm(submitURL)
	if err != nil {
		return false, err
	}
	if !form.SetFirst(code, "code", "reward_code") {
		if !form.FillFirstEmpty(code) {
			form.Add("code", code)
		}
	}

	resp, err := c.postForm(form, submitURL)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	page := strings.ToLower(string(body))
	ok := strings.Contains(page, "thank") || strings.Contains(page, "success")
	if c.verbose {
		if ok {
			c.info("code submitted successfully", "code", code)
		} else {
			c.info("code submission status unclear", "code", code)
		}
	}
	return ok, nil
}

// postForm posts the form to its action URL, following redirects.
// Anti-forgery form handlers want a Referer on the post.
func (c *Client) postForm(form *Form, referer string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, form.Action, strings.NewReader(form.Values().Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("POST %s: %s", form.Action, resp.Status)
	}
	return resp, nil
}

func (c *Client) warn(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, keyvals...)
	}
}

func (c *Client) info(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, keyvals...)
	}
}
