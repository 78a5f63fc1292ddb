package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanitycheck/engine/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeRepoFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadRepo_RejectsMissingPath(t *testing.T) {
	_, _, err := testEngine().LoadRepo(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestLoadRepo_SingleCheckNoContext(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "a.check.js", `
module.exports = {
  name: "A",
  check: function() {}
};
`)

	e := testEngine()
	checks, contexts, err := e.LoadRepo(dir)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Empty(t, contexts)
	assert.Equal(t, "A", checks[0].Name())

	checks[0].RunCheck(context.Background())
	assert.Equal(t, status.Passed, checks[0].Status().Code())
}

func TestLoadRepo_IgnoresDunderFiles(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "__init__.check.js", `module.exports = { name: "Hidden", check: function() { throw "should never run"; } };`)

	e := testEngine()
	checks, _, err := e.LoadRepo(dir)
	require.NoError(t, err)
	assert.Empty(t, checks)
}

func TestLoadRepo_BindsSharedContext(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "ctx.context.js", `
module.exports = { name: "Db", setup: function() {} };
`)
	writeRepoFile(t, dir, "check.check.js", `
module.exports = { name: "UsesDb", sharedContext: "Db", check: function() {} };
`)

	e := testEngine()
	checks, contexts, err := e.LoadRepo(dir)
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	require.Len(t, checks, 1)

	ref := checks[0].SharedContext()
	require.NotNil(t, ref)
	assert.True(t, ref.IsResolved())
	assert.Len(t, contexts[0].Checks(), 1)
}

func TestLoadRepo_OrphanRejection(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "check.check.js", `
module.exports = { name: "Orphan", sharedContext: "NoSuchContext", check: function() {} };
`)

	e := testEngine()
	checks, _, err := e.LoadRepo(dir)
	require.NoError(t, err)
	assert.Empty(t, checks, "check referencing an unknown context must be removed from the registry")
}

func TestLoadRepo_ResolvesDependencyNames(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "dep.check.js", `module.exports = { name: "Dep", check: function() {} };`)
	writeRepoFile(t, dir, "main.check.js", `module.exports = { name: "Main", dependsOn: ["Dep"], check: function() {} };`)

	e := testEngine()
	checks, _, err := e.LoadRepo(dir)
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, c := range checks {
		byName[c.Name()] = true
	}
	assert.True(t, byName["Dep"])
	assert.True(t, byName["Main"])

	for _, c := range checks {
		if c.Name() == "Main" {
			require.Len(t, c.Dependencies(), 1)
			assert.Equal(t, "Dep", c.Dependencies()[0].Name())
		}
	}
}

func TestLoadRepo_RejectsDependencyCycle(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "a.check.js", `module.exports = { name: "A", dependsOn: ["B"], check: function() {} };`)
	writeRepoFile(t, dir, "b.check.js", `module.exports = { name: "B", dependsOn: ["A"], check: function() {} };`)

	e := testEngine()
	_, _, err := e.LoadRepo(dir)
	assert.Error(t, err)
}

func TestLoadRepo_IdempotentAfterClear(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "a.check.js", `module.exports = { name: "A", check: function() {} };`)

	e := testEngine()
	first, _, err := e.LoadRepo(dir)
	require.NoError(t, err)

	e.ClearRegistry()
	second, _, err := e.LoadRepo(dir)
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second))
	assert.Equal(t, first[0].Name(), second[0].Name())
}

func TestLoadRepo_SkipsFileThatFailsToParse(t *testing.T) {
	dir := t.TempDir()
	writeRepoFile(t, dir, "broken.check.js", `this is not valid javascript {{{`)
	writeRepoFile(t, dir, "good.check.js", `module.exports = { name: "Good", check: function() {} };`)

	e := testEngine()
	checks, _, err := e.LoadRepo(dir)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "Good", checks[0].Name())
}
