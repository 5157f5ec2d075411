package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signatureOf(t *testing.T, source, name string) Signature {
	t.Helper()
	decls := extract(t, source)
	sig, ok := decls.Signatures[name]
	require.True(t, ok, "signature %q not found", name)
	return sig
}

func TestFormatParameterVariants(t *testing.T) {
	tests := []struct {
		name   string
		def    string
		params string
	}{
		{"plain", "def f(a, b): pass", "a, b"},
		{"annotated", "def f(a: int, b: str): pass", "a: int, b: str"},
		{"defaults", "def f(a=1, b='x'): pass", "a=1, b='x'"},
		{"annotated default", "def f(a: int = 1): pass", "a: int=1"},
		{"star args", "def f(*args, **kwargs): pass", "*args, **kwargs"},
		{"keyword only", "def f(a, *, b): pass", "a, *, b"},
		{"positional only", "def f(a, /, b): pass", "a, /, b"},
		{"full shape", "def f(a, b: int, *args, c=1, **kwargs): pass", "a, b: int, *args, c=1, **kwargs"},
		{"empty", "def f(): pass", ""},
		{"annotated varargs", "def f(*args: int): pass", "*args: int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := signatureOf(t, tt.def, "f")
			assert.Equal(t, tt.params, sig.Parameters)
		})
	}
}

func TestFormatAnnotationShapes(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want string
	}{
		{"identifier", "def f() -> int: pass", "int"},
		{"none", "def f() -> None: pass", "None"},
		{"attribute", "def f() -> typing.Any: pass", "typing.Any"},
		{"subscript", "def f() -> List[int]: pass", "List[int]"},
		{"nested subscript", "def f() -> Dict[str, List[int]]: pass", "Dict[str, List[int]]"},
		{"union pipe", "def f() -> int | None: pass", "int | None"},
		{"forward reference", "def f() -> 'Model': pass", "Model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := signatureOf(t, tt.def, "f")
			assert.Equal(t, tt.want, sig.ReturnType)
		})
	}
}

func TestFormatDefaultTruncation(t *testing.T) {
	sig := signatureOf(t, `def f(handler=some_really_long_factory_function_name()): pass`, "f")
	assert.Equal(t, "handler=...", sig.Parameters)

	sig = signatureOf(t, `def f(items=[], table={}, pair=()): pass`, "f")
	assert.Equal(t, "items=[], table={}, pair=()", sig.Parameters)

	sig = signatureOf(t, `def f(data=[1, 2, 3]): pass`, "f")
	assert.Equal(t, "data=[1, 2, 3]", sig.Parameters)
}

func TestMethodSelfStripped(t *testing.T) {
	decls := extract(t, `
class Box:
    def __init__(self, x, y=1):
        pass

    @classmethod
    def of(cls, value):
        pass

    @staticmethod
    def unit(scale):
        pass
`)

	assert.Equal(t, "x, y=1", decls.Signatures["Box"].Parameters)
	assert.Equal(t, "value", decls.Signatures["Box.of"].Parameters)
	assert.Equal(t, "scale", decls.Signatures["Box.unit"].Parameters)
}

func TestSplitParameters(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   []string
	}{
		{
			"full shape",
			"a, b: int, *args, c=1, **kwargs",
			[]string{"a", "b: int", "*args", "c=1", "**kwargs"},
		},
		{
			"nested brackets",
			"a: Dict[str, int], b: Tuple[int, int]",
			[]string{"a: Dict[str, int]", "b: Tuple[int, int]"},
		},
		{
			"comma in string default",
			`sep=", ", end='\n'`,
			[]string{`sep=", "`, `end='\n'`},
		},
		{"single", "x", []string{"x"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitParameters(tt.params))
		})
	}
}

func TestSplitParametersRoundTrip(t *testing.T) {
	sig := signatureOf(t, "def f(a, b: int, *args, c=1, **kwargs): pass", "f")
	parts := SplitParameters(sig.Parameters)
	assert.Equal(t, []string{"a", "b: int", "*args", "c=1", "**kwargs"}, parts)
}
