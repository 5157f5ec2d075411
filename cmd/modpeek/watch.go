package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gnana997/modpeek/pkg/render"
	"github.com/gnana997/modpeek/pkg/surface"
)

var (
	flagWatchDepth int
)

// debounce interval for editor save bursts.
const watchSettle = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <module>",
	Short: "Re-render a module tree whenever its source changes",
	Long:  "Explores the module, prints its tree, and watches the backing directories for changes to Python files, re-rendering on every change.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagWatchDepth, "depth", 2, "maximum submodule depth")
}

func runWatch(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.close()

	pretty := render.NewPrettyRenderer(displayConfig())

	displayName := args[0]
	if spec, perr := surface.ParseSpec(args[0]); perr == nil {
		displayName = spec.ModulePath
	}

	record, err := stack.service.Tree(cmd.Context(), args[0], flagWatchDepth)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), pretty.Tree(record, displayName))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTargets(watcher, record.Path); err != nil {
		return err
	}

	var settle *time.Timer
	settleCh := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".py") {
				continue
			}
			// Drop any mapping of the touched file so the re-render reads
			// fresh contents even if the event raced the cache.
			stack.files.Invalidate(event.Name)
			// Coalesce bursts of events into one re-render.
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(watchSettle, func() {
				select {
				case settleCh <- struct{}{}:
				default:
				}
			})

		case <-settleCh:
			fresh, err := stack.service.Tree(cmd.Context(), args[0], flagWatchDepth)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "re-render failed: %s\n", err)
				continue
			}
			fmt.Fprint(cmd.OutOrStdout(), pretty.Tree(fresh, displayName))

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			stack.logger.Warn("watch error", "error", werr)
		}
	}
}

// addWatchTargets registers the module's file or directory tree with the
// watcher. fsnotify does not recurse, so package directories are walked.
func addWatchTargets(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return watcher.Add(filepath.Dir(path))
	}

	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			return watcher.Add(p)
		}
		return nil
	})
}
