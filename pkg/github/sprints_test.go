package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

func TestSprintEndDate(t *testing.T) {
	assert.Equal(t, "2026-03-14", sprintEndDate("2026-03-01", 14))
	assert.Equal(t, "2026-03-01", sprintEndDate("2026-03-01", 1))
	assert.Equal(t, "", sprintEndDate("not-a-date", 14))
}

func TestMinStartDate(t *testing.T) {
	assert.Equal(t, "2026-01-01", minStartDate("2026-01-01", "2026-02-01"))
	assert.Equal(t, "2026-01-01", minStartDate("2026-02-01", "2026-01-01"))
	assert.Equal(t, "2026-01-01", minStartDate("", "2026-01-01"))
	assert.Equal(t, "2026-01-01", minStartDate("2026-01-01", ""))
}

func TestConvertSprintStatus(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		iter      iterationNode
		completed bool
		want      types.ResourceStatus
	}{
		{
			name:      "completed",
			iter:      iterationNode{StartDate: "2026-01-01", Duration: 14},
			completed: true,
			want:      types.StatusClosed,
		},
		{
			name: "current",
			iter: iterationNode{StartDate: "2026-03-01", Duration: 14},
			want: types.StatusInProgress,
		},
		{
			name: "upcoming",
			iter: iterationNode{StartDate: "2026-04-01", Duration: 14},
			want: types.StatusActive,
		},
		{
			name: "ended but not archived",
			iter: iterationNode{StartDate: "2026-02-01", Duration: 7},
			want: types.StatusActive,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := convertSprint(tc.iter, tc.completed, now)
			assert.Equal(t, tc.want, got.Status)
		})
	}

	t.Run("end date derived from duration", func(t *testing.T) {
		got := convertSprint(iterationNode{StartDate: "2026-03-01", Duration: 14}, false, now)
		assert.Equal(t, "2026-03-14", got.EndDate)
	})
}

func TestStrippedIterations(t *testing.T) {
	got := strippedIterations([]iterationNode{
		{ID: "it_1", Title: "Sprint 1", StartDate: "2026-01-01", Duration: 14},
	})
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{
		"title":     "Sprint 1",
		"startDate": "2026-01-01",
		"duration":  14,
	}, got[0])
	_, hasID := got[0]["id"]
	assert.False(t, hasID)
}

const iterationFieldResponse = `{"data":{"node":{"fields":{"nodes":[
	{"id":"F_status","name":"Status","dataType":"SINGLE_SELECT","options":[{"id":"o1","name":"Todo"}]},
	{"id":"F_iter","name":"Sprint","dataType":"ITERATION","configuration":{
		"startDate":"2026-02-01","duration":14,
		"iterations":[{"id":"it_1","title":"Sprint 1","startDate":"2026-02-01","duration":14}],
		"completedIterations":[{"id":"it_0","title":"Sprint 0","startDate":"2026-01-15","duration":14}]}}
]}}}}`

func TestFindIterationFieldByName(t *testing.T) {
	script := &scriptedGQL{}
	script.route("fields(first:", iterationFieldResponse)
	_, client := gqlServer(t, script.handler(t))

	field, err := client.Sprints.findIterationField(t.Context(), "P_1")
	require.NoError(t, err)
	assert.Equal(t, "F_iter", field.ID)
}

func TestFindIterationFieldMissing(t *testing.T) {
	script := &scriptedGQL{}
	script.route("fields(first:", `{"data":{"node":{"fields":{"nodes":[
		{"id":"F_status","name":"Status","dataType":"SINGLE_SELECT"}]}}}}`)
	_, client := gqlServer(t, script.handler(t))

	_, err := client.Sprints.findIterationField(t.Context(), "P_1")
	require.Error(t, err)
	var nf *ghErrors.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), "iteration field")
}

func TestSprintsFindAll(t *testing.T) {
	script := &scriptedGQL{}
	script.route("fields(first:", iterationFieldResponse)
	_, client := gqlServer(t, script.handler(t))

	sprints, err := client.Sprints.FindAll(t.Context(), "P_1")
	require.NoError(t, err)
	require.Len(t, sprints, 2)
	assert.Equal(t, "it_0", sprints[0].ID)
	assert.Equal(t, types.StatusClosed, sprints[0].Status)
	assert.Equal(t, "it_1", sprints[1].ID)
}

func TestSprintsCreateRejectsBadDates(t *testing.T) {
	client := newTestClient(nil, nil)

	_, err := client.Sprints.Create(t.Context(), "P_1", types.CreateSprint{
		Title:     "Sprint 2",
		StartDate: "March 1st",
	})
	require.Error(t, err)
	var ve *ghErrors.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = client.Sprints.Create(t.Context(), "P_1", types.CreateSprint{
		Title:     "Sprint 2",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-01",
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "precedes")
}

func TestSprintsCreateAppendsIteration(t *testing.T) {
	script := &scriptedGQL{}
	script.route("updateProjectV2Field", `{"data":{"updateProjectV2Field":{"projectV2Field":{"id":"F_iter"}}}}`)
	script.route("fields(first:", iterationFieldResponse)
	_, client := gqlServer(t, script.handler(t))

	// The scripted re-read does not include "Sprint 2"; creation must
	// notice the configuration write did not land the new iteration.
	_, err := client.Sprints.Create(t.Context(), "P_1", types.CreateSprint{
		Title:     "Sprint 2",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-14",
	})
	require.Error(t, err)
	var nf *ghErrors.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)

	// First read, one write, then the re-read.
	require.Len(t, script.queries, 3)
	assert.Contains(t, script.queries[1], "updateProjectV2Field")
}

func TestSprintsCreateSucceeds(t *testing.T) {
	written := `{"data":{"node":{"fields":{"nodes":[
	{"id":"F_iter","name":"Sprint","dataType":"ITERATION","configuration":{
		"startDate":"2026-02-01","duration":14,
		"iterations":[
			{"id":"it_1","title":"Sprint 1","startDate":"2026-02-01","duration":14},
			{"id":"it_2","title":"Sprint 2","startDate":"2026-03-01","duration":14}],
		"completedIterations":[]}}]}}}}`

	script := &scriptedGQL{}
	script.route("updateProjectV2Field", `{"data":{"updateProjectV2Field":{"projectV2Field":{"id":"F_iter"}}}}`)
	reads := 0
	script.routeFunc("fields(first:", func() string {
		reads++
		if reads == 1 {
			return iterationFieldResponse
		}
		return written
	})
	_, client := gqlServer(t, script.handler(t))

	sprint, err := client.Sprints.Create(t.Context(), "P_1", types.CreateSprint{
		Title:       "Sprint 2",
		StartDate:   "2026-03-01",
		EndDate:     "2026-03-14",
		Description: "Stabilization",
	})
	require.NoError(t, err)
	assert.Equal(t, "it_2", sprint.ID)
	assert.Equal(t, "2026-03-14", sprint.EndDate)
	assert.Equal(t, "Stabilization", sprint.Description)
	assert.Empty(t, sprint.Issues)
}

func TestSprintsDeleteCompletedRejected(t *testing.T) {
	script := &scriptedGQL{}
	script.route("fields(first:", iterationFieldResponse)
	_, client := gqlServer(t, script.handler(t))

	err := client.Sprints.Delete(t.Context(), "P_1", "it_0")
	require.Error(t, err)
	var ve *ghErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "completed")
}

func TestSprintsLocateMiss(t *testing.T) {
	script := &scriptedGQL{}
	script.route("fields(first:", iterationFieldResponse)
	_, client := gqlServer(t, script.handler(t))

	_, _, _, err := client.Sprints.locate(t.Context(), "P_1", "it_nope")
	require.Error(t, err)
	var nf *ghErrors.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)
}
