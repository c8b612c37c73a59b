// Package github implements tracker.Client on the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/time/rate"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/internal/retry"
	"github.com/spetersoncode/triage/llm"
	"github.com/spetersoncode/triage/tracker"
)

// Client talks to GitHub through go-github with client-side rate limiting
// and retries for transient failures.
type Client struct {
	gh      *gh.Client
	limiter *rate.Limiter
	retry   retry.Config
	perPage int
	logger  *slog.Logger

	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit limits requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithPerPage sets the page size for label listing.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a GitHub tracker client. An empty token makes unauthenticated
// requests, which only work for reads on public repositories.
func New(token string, opts ...Option) (*Client, error) {
	c := &Client{
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		retry:   retry.DefaultConfig(),
		perPage: tracker.DefaultPerPage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	client := gh.NewClient(c.httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if c.baseURL != "" {
		base := c.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL %q: %w", c.baseURL, err)
		}
		client.BaseURL = u
	}
	c.gh = client
	return c, nil
}

// call waits for the rate limiter, then runs fn with retries.
func call[T any](ctx context.Context, c *Client, op string, fn func() (T, *gh.Response, error)) (T, error) {
	cfg := c.retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("retrying github request", "op", op, "attempt", attempt, "delay", delay, "error", err)
	}
	return retry.Do(ctx, cfg, func() (T, error) {
		var zero T
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, err
		}
		v, _, err := fn()
		if err != nil {
			return zero, wrapError(op, err)
		}
		return v, nil
	})
}

// GetIssue fetches an issue with its current labels.
func (c *Client) GetIssue(ctx context.Context, ref triage.IssueReference) (triage.Issue, error) {
	issue, err := call(ctx, c, "get issue", func() (*gh.Issue, *gh.Response, error) {
		return c.gh.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	})
	if err != nil {
		return triage.Issue{}, err
	}

	return triage.Issue{
		Reference: ref,
		Title:     issue.GetTitle(),
		Body:      issue.Body,
		Labels:    convertLabels(issue.Labels),
	}, nil
}

// ListLabels returns every label defined in the repository.
func (c *Client) ListLabels(ctx context.Context, owner, repo string) ([]triage.LabelTag, error) {
	labels, err := tracker.Paginate(ctx, c.perPage, func(ctx context.Context, page int) ([]*gh.Label, error) {
		return call(ctx, c, "list labels", func() ([]*gh.Label, *gh.Response, error) {
			return c.gh.Issues.ListLabels(ctx, owner, repo, &gh.ListOptions{Page: page, PerPage: c.perPage})
		})
	})
	if err != nil {
		return nil, err
	}
	return convertLabels(labels), nil
}

// AddLabels adds labels to an issue and returns the issue's labels afterwards.
func (c *Client) AddLabels(ctx context.Context, ref triage.IssueReference, names []string) ([]triage.LabelTag, error) {
	labels, err := call(ctx, c, "add labels", func() ([]*gh.Label, *gh.Response, error) {
		return c.gh.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, names)
	})
	if err != nil {
		return nil, err
	}
	return convertLabels(labels), nil
}

func convertLabels(labels []*gh.Label) []triage.LabelTag {
	out := make([]triage.LabelTag, 0, len(labels))
	for _, l := range labels {
		if l == nil {
			continue
		}
		out = append(out, triage.LabelTag{Name: l.GetName(), Description: l.Description})
	}
	return out
}

// wrapError categorizes GitHub API errors so retry and callers can act on them.
func wrapError(op string, err error) error {
	msg := "github: " + op

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait <= 0 {
			wait = time.Second
		}
		return llm.NewTransientErrorWithRetry(msg, statusOf(rateErr.Response), wait, err)
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wait := abuseErr.GetRetryAfter()
		if wait <= 0 {
			wait = time.Minute
		}
		return llm.NewTransientErrorWithRetry(msg, statusOf(abuseErr.Response), wait, err)
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) {
		code := statusOf(respErr.Response)
		if code == http.StatusNotFound {
			err = errors.Join(tracker.ErrNotFound, err)
		}
		return llm.NewStatusError(msg, code, llm.ParseRetryAfter(respErr.Response), err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

var _ tracker.Client = (*Client)(nil)
