package explorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/modpeek/pkg/extractor"
	"github.com/gnana997/modpeek/pkg/parser"
	"github.com/gnana997/modpeek/pkg/util"
)

// writeTree materializes a map of relative paths to file contents under a
// fresh temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestExplorer(t *testing.T, roots []string, cacheSize int) *Explorer {
	t.Helper()

	pm := parser.NewManager(nil)
	t.Cleanup(func() { _ = pm.Close() })

	files, err := util.NewFileCache(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = files.Close() })

	exp, err := New(extractor.New(pm, nil), files, &Config{
		Roots:     roots,
		CacheSize: cacheSize,
	})
	require.NoError(t, err)
	return exp
}

func TestExploreFileModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"single.py": "def go():\n    pass\n\nLIMIT = 9\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("single", 2)
	require.NoError(t, err)

	assert.Equal(t, KindModule, record.Kind)
	assert.Equal(t, []string{"go"}, record.Functions)
	assert.Equal(t, []string{"LIMIT"}, record.Constants)
	assert.Empty(t, record.Submodules)
}

func TestExplorePackageTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py":     "def top():\n    pass\n",
		"mypkg/helpers.py":      "def helper():\n    pass\n",
		"mypkg/_private.py":     "def hidden():\n    pass\n",
		"mypkg/sub/__init__.py": "class Deep:\n    pass\n",
		"mypkg/sub/leaf.py":     "def leaf_fn():\n    pass\n",
		"mypkg/notes.txt":       "not python",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg", 2)
	require.NoError(t, err)

	assert.Equal(t, KindPackage, record.Kind)
	assert.Equal(t, []string{"top"}, record.Functions)

	require.Contains(t, record.Submodules, "helpers")
	require.Contains(t, record.Submodules, "sub")
	assert.NotContains(t, record.Submodules, "_private")
	assert.NotContains(t, record.Submodules, "notes")

	sub := record.Submodules["sub"]
	assert.Equal(t, []string{"Deep"}, sub.Classes)
	require.Contains(t, sub.Submodules, "leaf")
	assert.Equal(t, []string{"leaf_fn"}, sub.Submodules["leaf"].Functions)
}

func TestExploreDottedPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py":     "",
		"mypkg/sub/__init__.py": "",
		"mypkg/sub/leaf.py":     "def leaf_fn():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg.sub.leaf", 1)
	require.NoError(t, err)
	assert.Equal(t, KindModule, record.Kind)
	assert.Equal(t, []string{"leaf_fn"}, record.Functions)
}

func TestExploreDepthZero(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py": "def top():\n    pass\n",
		"mypkg/helpers.py":  "def helper():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"top"}, record.Functions)
	assert.Empty(t, record.Submodules)
}

func TestExploreModuleNotFound(t *testing.T) {
	exp := newTestExplorer(t, []string{t.TempDir()}, 0)

	_, err := exp.Explore("nothing.here", 1)
	var notFound *ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nothing.here", notFound.Module)
}

func TestExploreRootOrder(t *testing.T) {
	first := writeTree(t, map[string]string{
		"dup.py": "def from_first():\n    pass\n",
	})
	second := writeTree(t, map[string]string{
		"dup.py": "def from_second():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{first, second}, 0)

	record, err := exp.Explore("dup", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"from_first"}, record.Functions)
}

func TestPrependRootAndRestore(t *testing.T) {
	base := writeTree(t, map[string]string{
		"shadow.py": "def base_version():\n    pass\n",
	})
	overlay := writeTree(t, map[string]string{
		"shadow.py": "def overlay_version():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{base}, 8)

	restore := exp.PrependRoot(overlay)
	record, err := exp.Explore("shadow", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"overlay_version"}, record.Functions)

	restore()
	assert.Equal(t, []string{base}, exp.Roots())

	// Cache was purged with the root change: the old overlay result must
	// not leak through.
	record, err = exp.Explore("shadow", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"base_version"}, record.Functions)

	// Restore is idempotent.
	restore()
	assert.Equal(t, []string{base}, exp.Roots())
}

func TestExploreSeesFileChanges(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mod.py": "def old():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mod", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, record.Functions)

	// Rename-replace, the way editors save.
	replacement := filepath.Join(root, "mod.py.tmp")
	require.NoError(t, os.WriteFile(replacement, []byte("def renamed():\n    pass\n"), 0o644))
	require.NoError(t, os.Rename(replacement, filepath.Join(root, "mod.py")))

	record, err = exp.Explore("mod", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"renamed"}, record.Functions)
}

func TestNamespaceDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py":       "",
		"mypkg/ns/deep/code.py":   "def buried():\n    pass\n",
		"mypkg/empty/.gitkeep":    "",
		"mypkg/datadir/data.json": "{}",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg", 3)
	require.NoError(t, err)

	require.Contains(t, record.Submodules, "ns")
	assert.Equal(t, KindNamespace, record.Submodules["ns"].Kind)
	assert.NotContains(t, record.Submodules, "empty")
	assert.NotContains(t, record.Submodules, "datadir")

	deep := record.Submodules["ns"].Submodules["deep"]
	require.NotNil(t, deep)
	require.Contains(t, deep.Submodules, "code")
	assert.Equal(t, []string{"buried"}, deep.Submodules["code"].Functions)
}

func TestBrokenSubmoduleDropped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py": "",
		"mypkg/good.py":     "def fine():\n    pass\n",
		"mypkg/bad.py":      "def broken(:\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg", 1)
	require.NoError(t, err)
	assert.Contains(t, record.Submodules, "good")
	assert.NotContains(t, record.Submodules, "bad")
}

func TestBrokenRootPropagates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad.py": "def broken(:\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	_, err := exp.Explore("bad", 1)
	var parseErr *extractor.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestExportFilteringInTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mypkg/__init__.py": "__all__ = [\"a\"]\n\ndef a():\n    pass\n\ndef b():\n    pass\n",
	})
	exp := newTestExplorer(t, []string{root}, 0)

	record, err := exp.Explore("mypkg", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, record.Functions)
	assert.Equal(t, []string{"a"}, record.Exports)

	// Unexported signatures stay reachable for resolution.
	_, ok := record.Signatures["b"]
	assert.True(t, ok)
}
