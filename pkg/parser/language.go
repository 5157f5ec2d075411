package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source language for parsing.
type Language int

const (
	// LanguagePython represents Python (.py, .pyi files)
	LanguagePython Language = iota
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguagePython:
		return "python"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the source language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".py", ".pyi":
		return LanguagePython
	default:
		return LanguageUnknown
	}
}

// IsModuleFile reports whether a file path looks like an importable module
// (a parseable source file, stub files included).
func IsModuleFile(filePath string) bool {
	return DetectLanguage(filePath) != LanguageUnknown
}
