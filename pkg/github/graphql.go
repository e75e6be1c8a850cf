package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

// graphQLClient posts queries to GitHub's GraphQL endpoint. It is a thin
// JSON transport rather than a typed client because callers need the
// full errors array: GitHub can null out a single field (an owner probe
// for a login that is a user but not an organization) without failing
// the whole query, and that case must be told apart from a fatal error.
type graphQLClient struct {
	url   string
	token string
	http  *http.Client
}

func newGraphQLClient(url, token string, httpClient *http.Client) *graphQLClient {
	return &graphQLClient{url: url, token: token, http: httpClient}
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// responseKind is the three-way classification of a GraphQL response.
type responseKind int

const (
	responseData responseKind = iota
	responsePartialData
	responseFatal
)

// nullableFieldHints match the error messages GitHub emits when a
// nullable owner lookup resolves to nothing. Expected during the dual
// user/organization probe.
var nullableFieldHints = []string{
	"Could not resolve to an Organization",
	"Could not resolve to a User",
}

func isNullableFieldError(msg string) bool {
	for _, hint := range nullableFieldHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// classify partitions the envelope's errors and decides whether the
// response still carries usable data.
func (e *graphQLEnvelope) classify() responseKind {
	if len(e.Errors) == 0 {
		return responseData
	}
	for _, gerr := range e.Errors {
		if !isNullableFieldError(gerr.Message) {
			return responseFatal
		}
	}

	// Only nullable-field errors: usable if at least one top-level key
	// came back non-null.
	var top map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &top); err != nil {
		return responseFatal
	}
	for _, raw := range top {
		if len(raw) > 0 && string(raw) != "null" {
			return responsePartialData
		}
	}
	return responseFatal
}

func (e *graphQLEnvelope) joinedErrors() error {
	msgs := make([]string, 0, len(e.Errors))
	for _, gerr := range e.Errors {
		if gerr.Message == "" {
			msgs = append(msgs, "unknown error")
			continue
		}
		msgs = append(msgs, gerr.Message)
	}
	return fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, ", "))
}

// execute posts the query and returns the raw data document. HTTP-level
// failures surface as HTTPError for the classifier; GraphQL-level
// failures follow the partial-null policy above.
func (g *graphQLClient) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ghErrors.HTTPError{Status: resp.StatusCode, Header: resp.Header, Body: string(body)}
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding GraphQL response: %w", err)
	}

	switch envelope.classify() {
	case responseData, responsePartialData:
		return envelope.Data, nil
	default:
		return nil, envelope.joinedErrors()
	}
}

// graphql runs query under the retry policy and unmarshals the data
// document into out.
func (c *Client) graphql(ctx context.Context, label, query string, variables map[string]any, out any) error {
	var data json.RawMessage
	err := c.withRetry(ctx, label, func() error {
		var execErr error
		data, execErr = c.gql.execute(ctx, query, variables)
		return execErr
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", label, err)
	}
	return nil
}
