package github

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

// scriptedGQL routes each incoming query to a canned response by
// substring match, in registration order.
type scriptedGQL struct {
	routes []struct {
		contains string
		body     func() string
	}
	queries []string
}

func (s *scriptedGQL) route(contains, body string) {
	s.routeFunc(contains, func() string { return body })
}

// routeFunc registers a response computed per request, for flows that
// read the same query twice and expect different answers.
func (s *scriptedGQL) routeFunc(contains string, body func() string) {
	s.routes = append(s.routes, struct {
		contains string
		body     func() string
	}{contains, body})
}

func (s *scriptedGQL) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		s.queries = append(s.queries, payload.Query)
		normalized := strings.Join(strings.Fields(payload.Query), " ")
		for _, route := range s.routes {
			if strings.Contains(normalized, route.contains) {
				_, _ = w.Write([]byte(route.body()))
				return
			}
		}
		t.Fatalf("no scripted response for query: %s", payload.Query)
	}
}

func TestResolveOwnerIDPrefersUser(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":{"id":"U_1"}}}`)
	_, client := gqlServer(t, script.handler(t))

	id, err := client.Projects.resolveOwnerID(t.Context(), "octo")
	require.NoError(t, err)
	assert.Equal(t, "U_1", id)
	assert.Len(t, script.queries, 1)
}

func TestResolveOwnerIDFallsBackToOrganization(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":null},"errors":[{"message":"Could not resolve to a User with the login of 'acme'."}]}`)
	script.route("organization(login:", `{"data":{"organization":{"id":"O_1"}}}`)
	_, client := gqlServer(t, script.handler(t))

	id, err := client.Projects.resolveOwnerID(t.Context(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "O_1", id)
	assert.Len(t, script.queries, 2)
}

func TestResolveOwnerIDDoubleMiss(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":null},"errors":[{"message":"Could not resolve to a User with the login of 'ghost'."}]}`)
	script.route("organization(login:", `{"data":{"organization":null},"errors":[{"message":"Could not resolve to an Organization with the login of 'ghost'."}]}`)
	_, client := gqlServer(t, script.handler(t))

	_, err := client.Projects.resolveOwnerID(t.Context(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestProjectsCreateWithDescription(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":{"id":"U_1"}}}`)
	script.route("createProjectV2", `{"data":{"createProjectV2":{"projectV2":{
		"id":"P_1","number":7,"title":"Roadmap","shortDescription":"","url":"https://github.com/users/octo/projects/7",
		"public":false,"closed":false,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}}}}`)
	script.route("updateProjectV2(", `{"data":{"updateProjectV2":{"projectV2":{
		"id":"P_1","number":7,"title":"Roadmap","shortDescription":"Q3 planning","url":"https://github.com/users/octo/projects/7",
		"public":false,"closed":false,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}}}}`)
	_, client := gqlServer(t, script.handler(t))

	project, err := client.Projects.Create(t.Context(), types.CreateProject{
		Title:            "Roadmap",
		ShortDescription: "Q3 planning",
	})
	require.NoError(t, err)
	assert.Equal(t, "P_1", project.ID)
	assert.Equal(t, "Q3 planning", project.Description)
	assert.Equal(t, types.StatusActive, project.Status)
	// resolve, create, then the description follow-up
	assert.Len(t, script.queries, 3)
}

func TestProjectsFindByIDMiss(t *testing.T) {
	script := &scriptedGQL{}
	script.route("node(id:", `{"data":{"node":null}}`)
	_, client := gqlServer(t, script.handler(t))

	project, err := client.Projects.FindByID(t.Context(), "P_missing")
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestProjectsFindByOwnerUnionsBranches(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":{"projectsV2":{"nodes":[
		{"id":"P_u","number":1,"title":"Personal","public":true,"closed":false}]}}}}`)
	script.route("organization(login:", `{"data":{"organization":{"projectsV2":{"nodes":[
		{"id":"P_o","number":2,"title":"Team","public":false,"closed":false}]}}}}`)
	_, client := gqlServer(t, script.handler(t))

	projects, err := client.Projects.FindByOwner(t.Context(), "octo")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "P_u", projects[0].ID)
	assert.Equal(t, "public", projects[0].Visibility)
	assert.Equal(t, "P_o", projects[1].ID)
	assert.Equal(t, "private", projects[1].Visibility)
}

func TestProjectsFindByOwnerToleratesOrgMiss(t *testing.T) {
	script := &scriptedGQL{}
	script.route("user(login:", `{"data":{"user":{"projectsV2":{"nodes":[
		{"id":"P_u","number":1,"title":"Personal","public":false,"closed":false}]}}}}`)
	script.route("organization(login:", `{"data":{"organization":null},"errors":[{"message":"Could not resolve to an Organization with the login of 'octo'."}]}`)
	_, client := gqlServer(t, script.handler(t))

	projects, err := client.Projects.FindByOwner(t.Context(), "octo")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "P_u", projects[0].ID)
}

func TestConvertProjectURLFallback(t *testing.T) {
	repo := &ProjectsRepository{client: newTestClient(nil, nil)}
	project := repo.convertProject(projectNode{ID: "P_1", Number: 3, Title: "X"}, "")
	assert.Equal(t, "https://github.com/octo/projects/3", project.URL)
	assert.Equal(t, "octo", project.Owner)
	assert.Equal(t, "private", project.Visibility)
}
