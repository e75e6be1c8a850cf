package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

func gqlServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := newTestClient(nil, newGraphQLClient(srv.URL, "test-token", srv.Client()))
	return srv, client
}

func TestGraphQLSendsAuthAndDecodes(t *testing.T) {
	_, client := gqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload.Query, "viewer")
		assert.Equal(t, "octo", payload.Variables["login"])

		_, _ = w.Write([]byte(`{"data":{"viewer":{"login":"octo"}}}`))
	})

	var out struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	err := client.graphql(t.Context(), "fetching viewer",
		`query($login: String!) { viewer { login } }`,
		map[string]any{"login": "octo"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "octo", out.Viewer.Login)
}

func TestGraphQLPartialDataTolerated(t *testing.T) {
	// A dual owner probe where the login is an organization but not a
	// user: one branch nulls out with a nullable-field error, the other
	// carries data. The caller should see the data, not an error.
	_, client := gqlServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {"user": null, "organization": {"id": "O_1"}},
			"errors": [{"message": "Could not resolve to a User with the login of 'acme'."}]
		}`))
	})

	var out struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
		Organization *struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	err := client.graphql(t.Context(), "probing owner", `query { user organization }`, nil, &out)
	require.NoError(t, err)
	assert.Nil(t, out.User)
	require.NotNil(t, out.Organization)
	assert.Equal(t, "O_1", out.Organization.ID)
}

func TestGraphQLAllNullIsFatal(t *testing.T) {
	_, client := gqlServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {"user": null},
			"errors": [{"message": "Could not resolve to a User with the login of 'ghost'."}]
		}`))
	})

	err := client.graphql(t.Context(), "probing owner", `query { user }`, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not resolve to a User")
}

func TestGraphQLNonNullableErrorIsFatal(t *testing.T) {
	_, client := gqlServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {"node": {"id": "X"}},
			"errors": [{"message": "Field 'bogus' doesn't exist on type 'ProjectV2'"}]
		}`))
	})

	err := client.graphql(t.Context(), "fetching project", `query { node }`, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GraphQL errors")
}

func TestGraphQLHTTPStatusClassified(t *testing.T) {
	_, client := gqlServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.graphql(t.Context(), "fetching project", `query { node }`, nil, nil)
	require.Error(t, err)
	var ue *ghErrors.UnauthorizedError
	require.ErrorAs(t, err, &ue)
}

func TestIsNullableFieldError(t *testing.T) {
	assert.True(t, isNullableFieldError("Could not resolve to an Organization with the login of 'x'."))
	assert.True(t, isNullableFieldError("Could not resolve to a User with the login of 'x'."))
	assert.False(t, isNullableFieldError("Something went wrong"))
}

func TestEnvelopeClassify(t *testing.T) {
	tests := []struct {
		name     string
		envelope graphQLEnvelope
		want     responseKind
	}{
		{
			name:     "no errors",
			envelope: graphQLEnvelope{Data: json.RawMessage(`{"a":1}`)},
			want:     responseData,
		},
		{
			name: "nullable miss with sibling data",
			envelope: graphQLEnvelope{
				Data:   json.RawMessage(`{"user":null,"organization":{"id":"O"}}`),
				Errors: []graphQLError{{Message: "Could not resolve to a User"}},
			},
			want: responsePartialData,
		},
		{
			name: "nullable miss with no data",
			envelope: graphQLEnvelope{
				Data:   json.RawMessage(`{"user":null}`),
				Errors: []graphQLError{{Message: "Could not resolve to a User"}},
			},
			want: responseFatal,
		},
		{
			name: "hard error",
			envelope: graphQLEnvelope{
				Data:   json.RawMessage(`{"a":1}`),
				Errors: []graphQLError{{Message: "boom"}},
			},
			want: responseFatal,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.envelope.classify())
		})
	}
}
