// Command modpeek explores the public API surface of Python modules by
// parsing source on disk, without importing or executing any of it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/modpeek/pkg/explorer"
	"github.com/gnana997/modpeek/pkg/extractor"
	"github.com/gnana997/modpeek/pkg/fetcher"
	"github.com/gnana997/modpeek/pkg/parser"
	"github.com/gnana997/modpeek/pkg/render"
	"github.com/gnana997/modpeek/pkg/resolver"
	"github.com/gnana997/modpeek/pkg/surface"
	"github.com/gnana997/modpeek/pkg/util"
)

var (
	flagPaths      []string
	flagIndexURL   string
	flagNoDownload bool
	flagLogLevel   string
	flagQuiet      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "modpeek",
	Short:         "Static Python API surface explorer",
	Long:          "modpeek discovers functions, classes, constants and signatures of Python modules by parsing their source with tree-sitter. Missing packages can be fetched from PyPI into a temporary scope.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagPaths, "path", nil, "extra search root (repeatable; MODPEEK_PATH adds more, list-separated)")
	rootCmd.PersistentFlags().StringVar(&flagIndexURL, "index-url", fetcher.DefaultIndexURL, "package index base URL")
	rootCmd.PersistentFlags().BoolVar(&flagNoDownload, "no-download", false, "never fetch missing packages from the index")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(sigCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// stack bundles the wired components behind the CLI commands.
type stack struct {
	service *surface.Service
	logger  *slog.Logger

	parsers *parser.Manager
	files   util.FileCache
}

func (s *stack) close() {
	_ = s.parsers.Close()
	_ = s.files.Close()
}

// buildStack wires parser pools, file cache, explorer, resolver, fetcher
// and facade from the global flags.
func buildStack() (*stack, error) {
	level := util.LogLevel(flagLogLevel)
	if flagQuiet {
		level = util.LevelError
	}
	logger := util.NewLogger(util.LoggerConfig{
		Level:  level,
		Format: util.FormatText,
		Output: os.Stderr,
	})

	parsers := parser.NewManager(logger)

	files, err := util.NewFileCache(&util.FileCacheConfig{Logger: logger})
	if err != nil {
		_ = parsers.Close()
		return nil, err
	}

	exp, err := explorer.New(extractor.New(parsers, logger), files, &explorer.Config{
		Roots:  searchRoots(),
		Logger: logger,
	})
	if err != nil {
		_ = parsers.Close()
		_ = files.Close()
		return nil, err
	}

	var client *fetcher.Client
	if !flagNoDownload {
		client = fetcher.NewClient(&fetcher.Config{
			IndexURL: flagIndexURL,
			Logger:   logger,
		})
	}

	return &stack{
		service: surface.New(exp, resolver.New(exp, logger), client, logger),
		logger:  logger,
		parsers: parsers,
		files:   files,
	}, nil
}

// searchRoots merges --path flags, the MODPEEK_PATH list variable and the
// working directory, preserving precedence in that order.
func searchRoots() []string {
	var roots []string
	roots = append(roots, flagPaths...)

	if env := os.Getenv("MODPEEK_PATH"); env != "" {
		for _, p := range strings.Split(env, string(os.PathListSeparator)) {
			if p = strings.TrimSpace(p); p != "" {
				roots = append(roots, p)
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}

	seen := make(map[string]bool, len(roots))
	var unique []string
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			unique = append(unique, abs)
		}
	}
	return unique
}

// displayConfig loads the renderer config once from the environment.
func displayConfig() render.DisplayConfig {
	return render.ConfigFromEnv()
}
