// Package github wraps GitHub's REST and GraphQL APIs behind typed
// resource repositories with a single retry and error-classification
// policy.
package github

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v79/github"
	"golang.org/x/oauth2"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

const (
	defaultAPIBaseURL = "https://api.github.com/"
	defaultGraphQLURL = "https://api.github.com/graphql"
	httpTimeout       = 30 * time.Second
)

// Config is the pre-authenticated transport context every repository
// method operates under.
type Config struct {
	Owner string
	Repo  string
	Token string

	// APIBaseURL and GraphQLURL override the GitHub endpoints; used by
	// tests and GitHub Enterprise setups.
	APIBaseURL string
	GraphQLURL string
}

// Validate reports a ConfigurationError if any required value is missing.
func (c Config) Validate() error {
	switch {
	case c.Token == "":
		return &ghErrors.ConfigurationError{Message: "GITHUB_TOKEN is required"}
	case c.Owner == "":
		return &ghErrors.ConfigurationError{Message: "GITHUB_OWNER is required"}
	case c.Repo == "":
		return &ghErrors.ConfigurationError{Message: "GITHUB_REPO is required"}
	}
	return nil
}

// Client aggregates the REST SDK and the GraphQL transport and exposes
// one repository per resource kind.
type Client struct {
	cfg    Config
	rest   *gogithub.Client
	gql    *graphQLClient
	http   *http.Client
	logger *slog.Logger

	// sleep is the backoff sleeper; tests replace it to observe retries
	// without waiting.
	sleep func(ctx context.Context, d time.Duration) error

	Projects   *ProjectsRepository
	Issues     *IssuesRepository
	Milestones *MilestonesRepository
	Sprints    *SprintsRepository
}

// NewClient builds a client from cfg. The token is installed on both
// transports via oauth2.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = defaultGraphQLURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = httpTimeout

	rest := gogithub.NewClient(httpClient)
	if cfg.APIBaseURL != defaultAPIBaseURL {
		var err error
		rest, err = rest.WithEnterpriseURLs(cfg.APIBaseURL, cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		cfg:    cfg,
		rest:   rest,
		gql:    newGraphQLClient(cfg.GraphQLURL, cfg.Token, httpClient),
		http:   httpClient,
		logger: logger,
		sleep:  sleepContext,
	}
	c.Projects = &ProjectsRepository{client: c}
	c.Issues = &IssuesRepository{client: c}
	c.Milestones = &MilestonesRepository{client: c}
	c.Sprints = &SprintsRepository{client: c}
	return c, nil
}

// Owner returns the configured default owner login.
func (c *Client) Owner() string { return c.cfg.Owner }

// Repo returns the configured repository name.
func (c *Client) Repo() string { return c.cfg.Repo }

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
