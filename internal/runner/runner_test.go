package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanitycheck/engine/internal/loader"
	"github.com/sanitycheck/engine/internal/progress"
	"github.com/sanitycheck/engine/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunChecksFromRepo_ContextRunsBeforeStandaloneChecks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ctx.context.js", `module.exports = { name: "Ctx", setup: function() {} };`)
	writeFile(t, dir, "member.check.js", `module.exports = { name: "Member", sharedContext: "Ctx", check: function() {} };`)
	writeFile(t, dir, "standalone.check.js", `module.exports = { name: "Standalone", check: function() {} };`)

	e := loader.NewEngine(testLogger())
	sink := progress.NewCounting()
	r := New(e, sink, testLogger())

	checks, contexts, err := r.RunChecksFromRepo(context.Background(), dir, true)
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.Equal(t, status.Finished, contexts[0].Status().Code())

	for _, c := range checks {
		if c.Name() == "Standalone" {
			assert.Equal(t, status.Passed, c.Status().Code())
		}
	}
}

func TestRunChecks_NoDependencyGroupRunsBeforeWithDependencyGroup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dep.check.js", `module.exports = { name: "Dep", check: function() {} };`)
	writeFile(t, dir, "dependent.check.js", `module.exports = { name: "Dependent", dependsOn: ["Dep"], check: function() {} };`)

	e := loader.NewEngine(testLogger())
	r := New(e, nil, testLogger())

	checks, _, err := r.RunChecksFromRepo(context.Background(), dir, true)
	require.NoError(t, err)

	for _, c := range checks {
		assert.Equal(t, status.Passed, c.Status().Code(), c.Name())
	}
}

func TestRunCheck_ByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.check.js", `module.exports = { name: "A", check: function() {} };`)

	e := loader.NewEngine(testLogger())
	r := New(e, nil, testLogger())

	s, ok := r.RunCheck(context.Background(), "A", dir, true)
	require.True(t, ok)
	assert.Equal(t, status.Passed, s.Code())
}

func TestRunCheck_UnknownNameWarnsAndReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.check.js", `module.exports = { name: "A", check: function() {} };`)

	e := loader.NewEngine(testLogger())
	r := New(e, nil, testLogger())

	_, ok := r.RunCheck(context.Background(), "DoesNotExist", dir, true)
	assert.False(t, ok)
}

func TestRunCheck_OrphanedSharedContextWarnsAndReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.check.js", `module.exports = { name: "A", sharedContext: "NoSuchContext", check: function() {} };`)

	e := loader.NewEngine(testLogger())
	r := New(e, nil, testLogger())

	_, ok := r.RunCheck(context.Background(), "A", dir, true)
	assert.False(t, ok, "orphan rejection removes A from the registry before RunCheck can find it")
}
