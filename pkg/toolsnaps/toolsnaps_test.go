package toolsnaps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func inTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestWritesMissingSnapshotLocally(t *testing.T) {
	inTempDir(t)
	t.Setenv("CI", "")
	t.Setenv("UPDATE_TOOLSNAPS", "")

	require.NoError(t, Test("demo_tool", fakeTool{Name: "demo_tool", Description: "d"}))
	_, err := os.Stat(filepath.Join(snapDir, "demo_tool.snap"))
	assert.NoError(t, err)
}

func TestMissingSnapshotFailsUnderCI(t *testing.T) {
	inTempDir(t)
	t.Setenv("CI", "true")
	t.Setenv("UPDATE_TOOLSNAPS", "")

	err := Test("demo_tool", fakeTool{Name: "demo_tool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestMatchingSnapshotPasses(t *testing.T) {
	inTempDir(t)
	t.Setenv("CI", "")
	t.Setenv("UPDATE_TOOLSNAPS", "")

	tool := fakeTool{Name: "demo_tool", Description: "d"}
	require.NoError(t, Test("demo_tool", tool))
	require.NoError(t, Test("demo_tool", tool))
}

func TestChangedSchemaFailsWithDiff(t *testing.T) {
	inTempDir(t)
	t.Setenv("CI", "")
	t.Setenv("UPDATE_TOOLSNAPS", "")

	require.NoError(t, Test("demo_tool", fakeTool{Name: "demo_tool", Description: "old"}))
	err := Test("demo_tool", fakeTool{Name: "demo_tool", Description: "new"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changed")
	assert.Contains(t, err.Error(), "old")
	assert.Contains(t, err.Error(), "new")
}

func TestUpdateRewritesSnapshot(t *testing.T) {
	inTempDir(t)
	t.Setenv("CI", "")
	t.Setenv("UPDATE_TOOLSNAPS", "")

	require.NoError(t, Test("demo_tool", fakeTool{Name: "demo_tool", Description: "old"}))
	t.Setenv("UPDATE_TOOLSNAPS", "true")
	require.NoError(t, Test("demo_tool", fakeTool{Name: "demo_tool", Description: "new"}))

	t.Setenv("UPDATE_TOOLSNAPS", "")
	require.NoError(t, Test("demo_tool", fakeTool{Name: "demo_tool", Description: "new"}))
}
