// Package toolsnaps checks tool schemas against committed JSON
// snapshots, so accidental schema drift fails tests with a readable
// diff. Snapshots live in __toolsnaps__/<tool>.snap next to the test
// that calls Test. Set UPDATE_TOOLSNAPS=true to rewrite them.
package toolsnaps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jd "github.com/josephburnett/jd/lib"
)

const snapDir = "__toolsnaps__"

func snapPath(toolName string) string {
	return filepath.Join(snapDir, toolName+".snap")
}

// Test compares tool's JSON form against its snapshot. A missing
// snapshot is written and accepted locally but is an error under CI,
// where a missing snapshot means it was never committed.
func Test(toolName string, tool any) error {
	current, err := json.MarshalIndent(tool, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling tool %s: %w", toolName, err)
	}

	path := snapPath(toolName)
	if os.Getenv("UPDATE_TOOLSNAPS") == "true" {
		return write(path, current)
	}

	stored, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if os.Getenv("CI") != "" {
			return fmt.Errorf("snapshot %s does not exist; run tests locally with UPDATE_TOOLSNAPS=true and commit the result", path)
		}
		return write(path, current)
	}
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	diff, err := diffJSON(stored, current)
	if err != nil {
		return err
	}
	if diff != "" {
		return fmt.Errorf("tool schema for %s changed; run with UPDATE_TOOLSNAPS=true if intended:\n%s", toolName, diff)
	}
	return nil
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

func diffJSON(want, got []byte) (string, error) {
	wantNode, err := jd.ReadJsonString(string(want))
	if err != nil {
		return "", fmt.Errorf("parsing stored snapshot: %w", err)
	}
	gotNode, err := jd.ReadJsonString(string(got))
	if err != nil {
		return "", fmt.Errorf("parsing current schema: %w", err)
	}
	return wantNode.Diff(gotNode).Render(), nil
}
