// Where: internal/portal/client.go
// What: Authenticated HTTP session against the package administration portal.
// Why: Centralize cookies, CSRF echoing, and retry policy for the publish workflow.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production portal. Tests point the client at
	// an httptest server instead.
	DefaultBaseURL = "https://foundryvtt.com"

	loginFormID       = "login-form"
	loginUsernameKey  = "login_username"
	loginPasswordKey  = "login_password"
	sessionCookieName = "sessionid"

	packageFormID = "package-form"

	defaultTimeout = 30 * time.Second
)

// Client holds an HTTP session against the portal. The zero value is not
// usable; construct with NewClient.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	retry   retryPolicy
}

// NewClient builds a portal client with a fresh cookie jar.
// baseURL defaults to the production portal when empty.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse portal URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("portal URL %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: parsed,
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		retry: defaultRetryPolicy(),
	}, nil
}

// UseSession installs a pre-obtained session cookie, bypassing Login.
func (c *Client) UseSession(token string) {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  sessionCookieName,
		Value: token,
	}})
}

// Login performs the portal login exchange: fetch the login form, echo
// its hidden fields (CSRF token included), and POST the credentials.
// Returns an AuthError when the portal rejects the credentials or the
// exchange does not yield a session cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	page, pageURL, err := c.fetchPage(ctx, "/")
	if err != nil {
		return err
	}

	form, err := parseForm(strings.NewReader(page), loginFormID)
	if err != nil {
		return &AuthError{Reason: "login form missing", Err: err}
	}
	form.Values.Set(loginUsernameKey, username)
	form.Values.Set(loginPasswordKey, password)

	status, body, err := c.submitForm(ctx, form, pageURL)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Reason: fmt.Sprintf("portal returned HTTP %d", status)}
	case status >= 400:
		return &AuthError{Reason: fmt.Sprintf("unexpected login response HTTP %d", status)}
	}

	if !c.hasSessionCookie() {
		// A re-rendered login page means the credentials were rejected.
		if messages := errorListMessages(strings.NewReader(body)); len(messages) > 0 {
			return &AuthError{Reason: strings.Join(messages, "; ")}
		}
		return &AuthError{Reason: "no session cookie issued; check username and password"}
	}
	return nil
}

func (c *Client) hasSessionCookie() bool {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return true
		}
	}
	return false
}

// fetchPage GETs a portal path with bounded retry on transient failures.
// It returns the body and the final URL (after redirects) for use as a
// CSRF referer.
func (c *Client) fetchPage(ctx context.Context, path string) (string, *url.URL, error) {
	target := c.baseURL.JoinPath(path).String()
	op := "GET " + path

	var body string
	var finalURL *url.URL
	err := c.retry.do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return &TransientError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		if transient(resp.StatusCode) {
			return &TransientError{Op: op, Status: resp.StatusCode}
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransientError{Op: op, Err: err}
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s: portal returned HTTP %d", op, resp.StatusCode)
		}
		body = string(data)
		finalURL = resp.Request.URL
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return body, finalURL, nil
}

// submitForm POSTs a parsed form back to its action with bounded retry
// on transient failures. The page the form came from is sent as the
// Referer, which the portal's CSRF protection requires over HTTPS.
func (c *Client) submitForm(ctx context.Context, form *htmlForm, pageURL *url.URL) (int, string, error) {
	action := pageURL
	if form.Action != "" {
		resolved, err := pageURL.Parse(form.Action)
		if err != nil {
			return 0, "", fmt.Errorf("resolve form action %q: %w", form.Action, err)
		}
		action = resolved
	}
	op := form.Method + " " + action.Path
	encoded := form.Values.Encode()

	var status int
	var body string
	err := c.retry.do(func() error {
		req, err := http.NewRequestWithContext(ctx, form.Method, action.String(), strings.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", pageURL.String())

		resp, err := c.http.Do(req)
		if err != nil {
			return &TransientError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		if transient(resp.StatusCode) {
			return &TransientError{Op: op, Status: resp.StatusCode}
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransientError{Op: op, Err: err}
		}
		status = resp.StatusCode
		body = string(data)
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return status, body, nil
}

// transient reports whether a status code is worth retrying.
func transient(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}
