package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/modpeek/pkg/explorer"
)

// plainConfig keeps assertions free of ANSI escapes.
func plainConfig() DisplayConfig {
	config := DefaultDisplayConfig()
	config.UseColor = false
	return config
}

func sampleTree() *explorer.ModuleRecord {
	return &explorer.ModuleRecord{
		Name:      "mypkg",
		Kind:      explorer.KindPackage,
		Exports:   []string{"run"},
		Functions: []string{"run"},
		Classes:   []string{"Runner"},
		Submodules: map[string]*explorer.ModuleRecord{
			"extra": {
				Name:      "extra",
				Kind:      explorer.KindModule,
				Functions: []string{"more"},
			},
		},
	}
}

func TestPrettyTree(t *testing.T) {
	out := NewPrettyRenderer(plainConfig()).Tree(sampleTree(), "mypkg")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "📦 mypkg", lines[0])
	assert.Equal(t, "├── 📜 __all__: run", lines[1])
	assert.Equal(t, "├── ⚡ functions: run", lines[2])
	assert.Equal(t, "├── 🔷 classes: Runner", lines[3])
	assert.Equal(t, "└── 📦 extra", lines[4])
	assert.Equal(t, "    └── ⚡ functions: more", lines[5])
}

func TestPrettyTreeAsciiMode(t *testing.T) {
	config := plainConfig()
	config.asciiDisplay()

	out := NewPrettyRenderer(config).Tree(sampleTree(), "mypkg")
	assert.Contains(t, out, "[M] mypkg")
	assert.Contains(t, out, "|-- [F] functions: run")
	assert.NotContains(t, out, "📦")
}

func TestPrettySignature(t *testing.T) {
	sig := &explorer.Signature{
		Name:       "connect",
		Parameters: "host: str, port=5432",
		ReturnType: "Connection",
	}
	out := NewPrettyRenderer(plainConfig()).Signature(sig)

	assert.Contains(t, out, "📎 connect")
	assert.Contains(t, out, "├── Parameters:")
	assert.Contains(t, out, "├── host: str")
	assert.Contains(t, out, "├── port=5432")
	assert.Contains(t, out, "└── Returns:")
	assert.Contains(t, out, "Connection")
}

func TestPrettySignatureNoParameters(t *testing.T) {
	sig := &explorer.Signature{Name: "now"}
	out := NewPrettyRenderer(plainConfig()).Signature(sig)
	assert.Contains(t, out, "(no parameters)")
}

func TestPrettySignatureNotAvailable(t *testing.T) {
	out := NewPrettyRenderer(plainConfig()).SignatureNotAvailable("mystery")
	assert.Equal(t, "📎 mystery (signature not available)", out)
}

func TestJSONTree(t *testing.T) {
	out, err := NewJSONRenderer().Tree(sampleTree(), "mypkg")
	require.NoError(t, err)

	var doc struct {
		Module string `json:"module"`
		Tree   struct {
			API struct {
				All       []string `json:"all"`
				Functions []string `json:"functions"`
				Constants []string `json:"constants"`
			} `json:"api"`
			Submodules map[string]json.RawMessage `json:"submodules"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "mypkg", doc.Module)
	assert.Equal(t, []string{"run"}, doc.Tree.API.All)
	assert.Equal(t, []string{"run"}, doc.Tree.API.Functions)
	assert.NotNil(t, doc.Tree.API.Constants)
	assert.Contains(t, doc.Tree.Submodules, "extra")
}

func TestJSONSignature(t *testing.T) {
	sig := &explorer.Signature{
		Name:       "work",
		Parameters: "a, b: Dict[str, int], *args",
		ReturnType: "None",
	}
	out, err := NewJSONRenderer().Signature(sig)
	require.NoError(t, err)

	var doc signatureDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "work", doc.Name)
	assert.Equal(t, []string{"a", "b: Dict[str, int]", "*args"}, doc.Parameters)
	assert.Equal(t, "None", doc.ReturnType)
}

func TestJSONSignatureNotAvailable(t *testing.T) {
	out, err := NewJSONRenderer().SignatureNotAvailable("mystery")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["available"])
	assert.Equal(t, "mystery", doc["name"])
}

func TestConfigFromEnvAscii(t *testing.T) {
	t.Setenv("MODPEEK_ASCII", "1")
	t.Setenv("MODPEEK_NO_COLOR", "1")

	config := ConfigFromEnv()
	assert.Equal(t, "[M]", config.ModuleIcon)
	assert.Equal(t, "`-- ", config.TreeLast)
	assert.False(t, config.UseColor)
}

func TestConfigFromEnvIconOverride(t *testing.T) {
	t.Setenv("MODPEEK_MODULE_ICON", ">>")

	config := ConfigFromEnv()
	assert.Equal(t, ">>", config.ModuleIcon)
	assert.Equal(t, "⚡", config.FunctionIcon)
}
