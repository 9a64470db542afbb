// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapoql/internal/cli/output"
	roottestutil "github.com/leapstack-labs/leapoql/internal/testutil"
)

// Queries is the query file written by SetupTestProject. The third line
// references an unknown property.
const Queries = `# people
select p.name from Person p where p.age > :age

select p.nosuch from Person p
select c.name, count(*) from Person p join p.employer c group by c.name
`

// SetupTestProject creates a temporary project holding the shared test
// mapping, a leapoql.yaml pointing at it and a query file. It returns the
// project directory.
func SetupTestProject(t *testing.T, config string) string {
	t.Helper()

	tmpDir := t.TempDir()
	files := map[string]string{
		"mapping.yaml": roottestutil.MappingYAML,
		"leapoql.yaml": config,
		"queries.oql":  Queries,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a renderer for format capturing its output.
func NewTestRenderer(format string) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, format),
		Out:      out,
		ErrOut:   errOut,
	}
}
