package surface

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/modpeek/pkg/explorer"
	"github.com/gnana997/modpeek/pkg/extractor"
	"github.com/gnana997/modpeek/pkg/fetcher"
	"github.com/gnana997/modpeek/pkg/parser"
	"github.com/gnana997/modpeek/pkg/resolver"
	"github.com/gnana997/modpeek/pkg/util"
)

type testStack struct {
	service  *Service
	explorer *explorer.Explorer
	root     string
}

// newTestStack wires a full service over one temp search root. indexURL
// may be empty to disable acquisition.
func newTestStack(t *testing.T, files map[string]string, indexURL string) *testStack {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	pm := parser.NewManager(nil)
	t.Cleanup(func() { _ = pm.Close() })

	cache, err := util.NewFileCache(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	exp, err := explorer.New(extractor.New(pm, nil), cache, &explorer.Config{
		Roots: []string{root},
	})
	require.NoError(t, err)

	var client *fetcher.Client
	if indexURL != "" {
		client = fetcher.NewClient(&fetcher.Config{IndexURL: indexURL})
	}

	res := resolver.New(exp, nil)
	return &testStack{
		service:  New(exp, res, client, nil),
		explorer: exp,
		root:     root,
	}
}

func TestTreeLocalModule(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"mypkg/__init__.py": "def top():\n    pass\n",
		"mypkg/extra.py":    "def more():\n    pass\n",
	}, "")

	record, err := stack.service.Tree(context.Background(), "mypkg", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"top"}, record.Functions)
	assert.Contains(t, record.Submodules, "extra")
}

func TestTreeRejectsLoneColon(t *testing.T) {
	stack := newTestStack(t, nil, "")

	_, err := stack.service.Tree(context.Background(), "json:loads", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid module path")
}

func TestTreeStdlibNeverAcquired(t *testing.T) {
	// No index configured would panic on acquisition; a stdlib miss must
	// not get that far anyway.
	stack := newTestStack(t, nil, "")

	_, err := stack.service.Tree(context.Background(), "asyncio", 1)
	var notFound *explorer.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSignatureDirect(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"mod.py": "def run(argv=None) -> int:\n    pass\n",
	}, "")

	sig, err := stack.service.Signature(context.Background(), "mod:run")
	require.NoError(t, err)
	assert.Equal(t, "argv=None", sig.Parameters)
	assert.Equal(t, "int", sig.ReturnType)
}

func TestSignatureDottedForm(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"mod.py": "def run():\n    pass\n",
	}, "")

	sig, err := stack.service.Signature(context.Background(), "mod.run")
	require.NoError(t, err)
	assert.Equal(t, "run", sig.Name)
}

func TestSignatureExportsGuidedSearch(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"pkg/__init__.py": "__all__ = [\"Engine\"]\n",
		"pkg/engine.py": `
class Engine:
    def __init__(self, url, echo=False):
        pass
`,
	}, "")

	sig, err := stack.service.Signature(context.Background(), "pkg:Engine")
	require.NoError(t, err)
	assert.Equal(t, "url, echo=False", sig.Parameters)
}

func TestSignatureRootPackageDeepSearch(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"pkg/__init__.py":      "",
		"pkg/deep/__init__.py": "",
		"pkg/deep/impl.py":     "def target(a, b=1):\n    pass\n",
	}, "")

	// The named module does not declare target; the root-package search
	// finds it under pkg.deep.impl.
	sig, err := stack.service.Signature(context.Background(), "pkg.other:target")
	require.NoError(t, err)
	assert.Equal(t, "a, b=1", sig.Parameters)
}

func TestSignatureViaImportChain(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"app/__init__.py":     "from toolkit.core import launch\n",
		"toolkit/__init__.py": "",
		"toolkit/core.py": "def launch(mode='fast'):\n    pass\n",
	}, "")

	sig, err := stack.service.Signature(context.Background(), "app:launch")
	require.NoError(t, err)
	assert.Equal(t, "mode='fast'", sig.Parameters)
}

func TestSignatureSoftMiss(t *testing.T) {
	stack := newTestStack(t, map[string]string{
		"mod.py": "def present():\n    pass\n",
	}, "")

	_, err := stack.service.Signature(context.Background(), "mod:absent")
	var miss *SymbolNotFound
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "absent", miss.Symbol)
	assert.Contains(t, err.Error(), "signature not available")
}

func TestSignatureBuiltinModule(t *testing.T) {
	stack := newTestStack(t, nil, "")

	_, err := stack.service.Signature(context.Background(), "sys:exit")
	var miss *SymbolNotFound
	require.ErrorAs(t, err, &miss)
}

// newWheelIndex serves a single-package index whose wheel contains the
// given files.
func newWheelIndex(t *testing.T, pkgName, version string, files map[string]string) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	wheel := buf.Bytes()
	filename := pkgName + "-" + version + "-py3-none-any.whl"

	mux := http.NewServeMux()
	mux.HandleFunc("/pypi/"+pkgName+"/json", func(rw http.ResponseWriter, r *http.Request) {
		meta := map[string]any{
			"info": map[string]any{"version": version},
			"releases": map[string]any{
				version: []map[string]any{
					{"filename": filename, "url": "http://" + r.Host + "/files/" + filename},
				},
			},
		}
		require.NoError(t, json.NewEncoder(rw).Encode(meta))
	})
	mux.HandleFunc("/files/"+filename, func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write(wheel)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestTreeAcquiresMissingPackage(t *testing.T) {
	index := newWheelIndex(t, "webkit", "2.0.0", map[string]string{
		"webkit/__init__.py": "def serve(port=8000):\n    pass\n",
	})
	stack := newTestStack(t, nil, index.URL)

	record, err := stack.service.Tree(context.Background(), "webkit", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"serve"}, record.Functions)

	// The acquisition scope is gone: the temporary root was removed and
	// the module no longer resolves.
	assert.Equal(t, []string{stack.root}, stack.explorer.Roots())
	_, err = stack.explorer.Explore("webkit", 1)
	var notFound *explorer.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTreeMissingDependency(t *testing.T) {
	index := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(index.Close)
	stack := newTestStack(t, nil, index.URL)

	_, err := stack.service.Tree(context.Background(), "ghostpkg", 1)
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghostpkg", missing.Package)
	assert.True(t, errors.Is(err, fetcher.ErrPackageNotFound))
}

func TestSignatureAcquisitionFailureIsSoft(t *testing.T) {
	index := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(index.Close)
	stack := newTestStack(t, nil, index.URL)

	_, err := stack.service.Signature(context.Background(), "ghostpkg:thing")
	var miss *SymbolNotFound
	require.ErrorAs(t, err, &miss)
}

func TestWithAcquiredRestoresOnError(t *testing.T) {
	index := newWheelIndex(t, "webkit", "2.0.0", map[string]string{
		"webkit/__init__.py": "",
	})
	stack := newTestStack(t, nil, index.URL)

	var importRoot string
	failure := errors.New("closure failed")
	err := stack.service.withAcquired(context.Background(), "webkit", func() error {
		roots := stack.explorer.Roots()
		require.Len(t, roots, 2)
		importRoot = roots[0]
		return failure
	})
	require.ErrorIs(t, err, failure)

	// Roots restored and scratch deleted even though the closure failed.
	assert.Equal(t, []string{stack.root}, stack.explorer.Roots())
	_, statErr := os.Stat(importRoot)
	assert.True(t, os.IsNotExist(statErr))
}
