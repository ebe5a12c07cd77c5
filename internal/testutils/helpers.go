// Package testutils holds fixtures shared by adapter and CLI tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles seeds dir with name->content pairs, creating subdirectories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// AdminDashboardMarkdown is a tour document equivalent to the builtin admin-dashboard tour.
const AdminDashboardMarkdown = `---
id: admin-dashboard
roles: [administrator]
steps:
  - target: "[data-tour=sidebar]"
    title: Navigation
    body: Every admin section lives in the sidebar.
    placement: right
    first_step: true
  - target: "[data-tour=stats]"
    title: Key numbers
  - target: "[data-tour=quotations]"
    placement: top
  - "[data-tour=help]"
---
# Admin dashboard
`
