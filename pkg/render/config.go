// Package render turns explored module trees and signatures into pretty
// terminal output or machine-readable JSON.
//
// Display characters and colors come from a DisplayConfig value that is
// passed in explicitly; ConfigFromEnv loads one from MODPEEK_* variables
// once, at the edge, so the core carries no process-wide mutable state.
package render

import (
	"strings"

	"github.com/spf13/viper"
)

// ColorScheme holds the hex foreground colors per element kind.
type ColorScheme struct {
	Module    string
	Function  string
	Class     string
	Constant  string
	Exports   string
	Signature string
	Tree      string
	Param     string
	Type      string
	Warning   string
}

// DisplayConfig controls tree and signature rendering.
type DisplayConfig struct {
	ModuleIcon    string
	FunctionIcon  string
	ClassIcon     string
	ConstantIcon  string
	ExportsIcon   string
	SignatureIcon string

	TreeBranch   string
	TreeLast     string
	TreeVertical string
	TreeEmpty    string

	UseColor bool
	Colors   ColorScheme
}

// DefaultDisplayConfig returns the Unicode defaults with an earth-tone
// color scheme.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		ModuleIcon:    "📦",
		FunctionIcon:  "⚡",
		ClassIcon:     "🔷",
		ConstantIcon:  "📌",
		ExportsIcon:   "📜",
		SignatureIcon: "📎",

		TreeBranch:   "├── ",
		TreeLast:     "└── ",
		TreeVertical: "│   ",
		TreeEmpty:    "    ",

		UseColor: true,
		Colors: ColorScheme{
			Module:    "#8B7355",
			Function:  "#6B8E23",
			Class:     "#4682B4",
			Constant:  "#BC8F8F",
			Exports:   "#9370DB",
			Signature: "#5F9EA0",
			Tree:      "#696969",
			Param:     "#708090",
			Type:      "#778899",
			Warning:   "#DAA520",
		},
	}
}

// asciiDisplay switches every glyph to a plain ASCII equivalent.
func (c *DisplayConfig) asciiDisplay() {
	c.ModuleIcon = "[M]"
	c.FunctionIcon = "[F]"
	c.ClassIcon = "[C]"
	c.ConstantIcon = "[K]"
	c.ExportsIcon = "[E]"
	c.SignatureIcon = "[S]"

	c.TreeBranch = "|-- "
	c.TreeLast = "`-- "
	c.TreeVertical = "|   "
	c.TreeEmpty = "    "
}

// ConfigFromEnv loads a DisplayConfig from MODPEEK_* environment
// variables. Recognized keys: ASCII, NO_COLOR (the bare NO_COLOR
// convention is honored too), plus per-glyph overrides such as
// MODPEEK_MODULE_ICON and MODPEEK_TREE_BRANCH.
func ConfigFromEnv() DisplayConfig {
	v := viper.New()
	v.SetEnvPrefix("modpeek")
	v.AutomaticEnv()

	config := DefaultDisplayConfig()

	if v.GetBool("ascii") {
		config.asciiDisplay()
	}

	overrides := []struct {
		key  string
		dest *string
	}{
		{"module_icon", &config.ModuleIcon},
		{"function_icon", &config.FunctionIcon},
		{"class_icon", &config.ClassIcon},
		{"constant_icon", &config.ConstantIcon},
		{"exports_icon", &config.ExportsIcon},
		{"signature_icon", &config.SignatureIcon},
		{"tree_branch", &config.TreeBranch},
		{"tree_last", &config.TreeLast},
		{"tree_vertical", &config.TreeVertical},
		{"tree_empty", &config.TreeEmpty},
	}
	for _, o := range overrides {
		if val := v.GetString(o.key); strings.TrimSpace(val) != "" {
			*o.dest = val
		}
	}

	if v.GetString("no_color") != "" || noColorConvention() {
		config.UseColor = false
	}
	return config
}

// noColorConvention honors https://no-color.org.
func noColorConvention() bool {
	v := viper.New()
	v.AutomaticEnv()
	return v.GetString("no_color") != ""
}
