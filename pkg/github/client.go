package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v84/github"

	"github.com/smykla-skalski/objmerge/pkg/logger"
)

// Client wraps the GitHub API client with additional functionality.
type Client struct {
	*github.Client
	log *logger.Logger
}

type clientOptions struct {
	baseURL   string
	transport http.RoundTripper
}

// ClientOption adjusts NewClient.
type ClientOption func(*clientOptions)

// WithBaseURL points the client at another API root, such as GitHub
// Enterprise or a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithTransport sets the transport wrapped by the rate limiter.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.transport = rt }
}

// NewClient creates a new GitHub API client with rate limiting.
func NewClient(ctx context.Context, log *logger.Logger, token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, errors.WithStack(ErrGitHubTokenNotFound)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	rateLimiter := github_ratelimit.NewClient(o.transport)

	client := github.NewClient(rateLimiter).WithAuthToken(token)

	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrapf(err, "parsing base URL %q", o.baseURL)
		}

		client.BaseURL = base
	}

	if err := validateToken(ctx, client); err != nil {
		return nil, errors.Wrap(err, "validating token")
	}

	log.Debug("GitHub client initialized successfully", "base_url", client.BaseURL.String())

	return &Client{
		Client: client,
		log:    log,
	}, nil
}

func validateToken(ctx context.Context, client *github.Client) error {
	_, resp, err := client.RateLimit.Get(ctx)
	if err != nil {
		return errors.Wrap(ErrValidatingToken, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrValidatingToken, "unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
