package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

type fixture struct {
	folder  string
	queries string
}

func writeFixture(t *testing.T, queries string) fixture {
	t.Helper()
	root := t.TempDir()
	folder := filepath.Join(root, "pages")
	require.NoError(t, os.Mkdir(folder, 0o755))
	docs := map[string]string{
		"a.txt": "binary tree binary",
		"b.txt": "tree",
		"c.txt": "nothing here",
	}
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte(text), 0o644))
	}
	queryFile := filepath.Join(root, "queries.txt")
	require.NoError(t, os.WriteFile(queryFile, []byte(queries), 0o644))
	return fixture{folder: folder, queries: queryFile}
}

func (f fixture) doc(name string) string {
	return filepath.Join(f.folder, name)
}

func runDispatch(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := dispatch(context.Background(), append(args, "-log-level", "error"), &out)
	return out.String(), err
}

func TestRunTextOutput(t *testing.T) {
	f := writeFixture(t, "Binary Tree\nabsent\n")

	out, err := runDispatch(t, "run", "-folder", f.folder, "-queries", f.queries)
	require.NoError(t, err)

	want := "\n______The top search results for Binary Tree______\n\n" +
		f.doc("a.txt") + "\n" +
		f.doc("b.txt") + "\n" +
		"\n______The top search results for absent______\n\n"
	assert.Equal(t, want, out)
}

func TestRunIsDefaultCommand(t *testing.T) {
	f := writeFixture(t, "tree\n")

	out, err := runDispatch(t, "-folder", f.folder, "-queries", f.queries, "-limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "\n______The top search results for tree______\n\n"+f.doc("a.txt")+"\n", out)
}

func TestRunFlushCacheWithoutRedis(t *testing.T) {
	f := writeFixture(t, "tree\n")

	out, err := runDispatch(t, "run", "-folder", f.folder, "-queries", f.queries, "-flush-cache")
	require.NoError(t, err)
	assert.Contains(t, out, f.doc("a.txt"))
}

func TestRunJSONOutput(t *testing.T) {
	f := writeFixture(t, "tree\nbinary\n")

	out, err := runDispatch(t, "run", "-folder", f.folder, "-queries", f.queries, "-format", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first executor.SearchResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "tree", first.Query)
	require.Len(t, first.Results, 2)
	assert.Equal(t, f.doc("a.txt"), first.Results[0].Document)
	assert.Equal(t, 1, first.Results[0].Score)
	assert.Equal(t, f.doc("b.txt"), first.Results[1].Document)

	var second executor.SearchResult
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "binary", second.Query)
	require.Len(t, second.Results, 1)
	assert.Equal(t, 2, second.Results[0].Score)
}

func TestRunMissingFolder(t *testing.T) {
	f := writeFixture(t, "tree\n")

	_, err := runDispatch(t, "run", "-folder", filepath.Join(f.folder, "missing"), "-queries", f.queries)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
	assert.Equal(t, 3, apperrors.ExitCode(err))
}

func TestRunRequiresInputs(t *testing.T) {
	f := writeFixture(t, "tree\n")

	_, err := runDispatch(t, "run", "-folder", f.folder)
	require.Error(t, err)
	assert.Equal(t, 2, apperrors.ExitCode(err))
}

func TestUnknownCommand(t *testing.T) {
	_, err := runDispatch(t, "serve")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "serve")
}

func TestBadFlag(t *testing.T) {
	_, err := runDispatch(t, "run", "-no-such-flag")
	require.Error(t, err)
	assert.Equal(t, 2, apperrors.ExitCode(err))
}

func TestInspectWord(t *testing.T) {
	f := writeFixture(t, "")

	out, err := runDispatch(t, "inspect", "-doc", f.doc("a.txt"), "-word", "BINARY")
	require.NoError(t, err)
	assert.Contains(t, out, "words: 3\n")
	assert.Contains(t, out, "distinct words: 2\n")
	assert.Contains(t, out, "tree root: binary\n")
	assert.Contains(t, out, "count: 2\n")
	assert.Contains(t, out, "positions: [0 2]\n")
	assert.Contains(t, out, `search path for "binary": binary`)
}

func TestInspectMissingWord(t *testing.T) {
	f := writeFixture(t, "")

	out, err := runDispatch(t, "inspect", "-doc", f.doc("b.txt"), "-word", "graph")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
	assert.Contains(t, out, `search path for "graph": tree`)
	assert.Contains(t, out, "count: 0\n")
}

func TestInspectDump(t *testing.T) {
	f := writeFixture(t, "")

	out, err := runDispatch(t, "inspect", "-doc", f.doc("a.txt"), "-dump")
	require.NoError(t, err)
	assert.Contains(t, out, "binary: [0 2]\ntree: [1]\n")
}

func TestInspectPosition(t *testing.T) {
	f := writeFixture(t, "")

	out, err := runDispatch(t, "inspect", "-doc", f.doc("a.txt"), "-pos", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "word at position 1: tree\n")

	_, err = runDispatch(t, "inspect", "-doc", f.doc("a.txt"), "-pos", "3")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
}

func TestInspectRequiresDoc(t *testing.T) {
	_, err := runDispatch(t, "inspect")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestCheckInputs(t *testing.T) {
	f := writeFixture(t, "tree\n")

	out, err := runDispatch(t, "check", "-folder", f.folder, "-queries", f.queries)
	require.NoError(t, err)
	assert.Contains(t, out, "corpus")
	assert.Contains(t, out, "queries")
	assert.Contains(t, out, "overall: up\n")
}

func TestCheckMissingQueryFile(t *testing.T) {
	f := writeFixture(t, "tree\n")

	out, err := runDispatch(t, "check", "-folder", f.folder, "-queries", f.queries+".missing", "-format", "json")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)

	var report struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "down", report.Status)
	assert.Equal(t, "up", report.Components["corpus"].Status)
	assert.Equal(t, "down", report.Components["queries"].Status)
}
