package surface

import "strings"

// stdlibModules holds common standard-library top-level module names.
// Ships with the interpreter, so acquisition from the package index is
// never attempted for these.
var stdlibModules = map[string]bool{
	"abc": true, "argparse": true, "ast": true, "asyncio": true,
	"base64": true, "builtins": true, "collections": true,
	"contextlib": true, "copy": true, "csv": true, "datetime": true,
	"decimal": true, "enum": true, "functools": true, "gc": true,
	"glob": true, "hashlib": true, "importlib": true, "inspect": true,
	"io": true, "itertools": true, "json": true, "logging": true,
	"math": true, "os": true, "pathlib": true, "pickle": true,
	"platform": true, "pprint": true, "queue": true, "random": true,
	"re": true, "shutil": true, "signal": true, "socket": true,
	"sqlite3": true, "string": true, "struct": true, "subprocess": true,
	"sys": true, "tempfile": true, "textwrap": true, "threading": true,
	"time": true, "timeit": true, "types": true, "typing": true,
	"unittest": true, "urllib": true, "uuid": true, "warnings": true,
	"weakref": true, "xml": true, "zipfile": true,

	"_ast": true, "_collections": true, "_functools": true, "_io": true,
	"_json": true, "_pickle": true, "_socket": true, "_sqlite3": true,
	"_thread": true, "_warnings": true, "_weakref": true,
}

// builtinModules are stdlib modules implemented in C. They have no Python
// source on disk, so no signature can ever come out of parsing them.
var builtinModules = map[string]bool{
	"builtins": true, "sys": true, "gc": true, "math": true, "time": true,
	"_ast": true, "_collections": true, "_functools": true, "_io": true,
	"_json": true, "_pickle": true, "_socket": true, "_sqlite3": true,
	"_thread": true, "_warnings": true, "_weakref": true,
}

// IsStdlibModule reports whether the dotted path belongs to the standard
// library, judged by its first segment.
func IsStdlibModule(modulePath string) bool {
	return stdlibModules[baseModule(modulePath)]
}

// IsBuiltinModule reports whether the dotted path names a C-implemented
// module with no parseable source.
func IsBuiltinModule(modulePath string) bool {
	return builtinModules[baseModule(modulePath)]
}

func baseModule(modulePath string) string {
	base, _, _ := strings.Cut(modulePath, ".")
	return base
}
