package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beanviz/bean/internal/analyzer"
	"github.com/beanviz/bean/internal/config"
	"github.com/beanviz/bean/internal/discover"
	"github.com/beanviz/bean/internal/parsers"
	"github.com/beanviz/bean/internal/watcher"
)

var (
	analyzeWatch  bool
	analyzeOutput string
	analyzeFormat string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Extract the structural model of a source tree",
	Long: `Analyze parses every supported source file under the given path
(default: current directory) and builds a structural model: modules,
classes, functions, call edges, and complexity metrics.

Examples:
  # Analyze the current directory
  bean analyze

  # Write the model as JSON
  bean analyze --format json -o model.json

  # Re-analyze on every file change
  bean analyze --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "Watch for file changes and re-analyze")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the result to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Output format: text or json (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	format := cfg.Output.Format
	if analyzeFormat != "" {
		format = analyzeFormat
	}

	an := newAnalyzer(cfg)
	defer an.Close()

	if err := analyzeOnce(ctx, an, cfg, rootDir, format); err != nil {
		return err
	}
	if !analyzeWatch {
		return nil
	}

	return watchLoop(ctx, an, cfg, rootDir, format)
}

// analyzeOnce discovers, analyzes, and renders one snapshot.
func analyzeOnce(ctx context.Context, an *analyzer.Analyzer, cfg *config.Config, rootDir, format string) error {
	d, err := discover.New(rootDir, cfg.Paths.Include, cfg.Paths.Exclude,
		discover.WithMaxFileSize(cfg.Analysis.MaxFileSize))
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}

	sources, err := d.Sources()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}

	snap, err := an.Analyze(ctx, rootDir, sources)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := openOutput(analyzeOutput)
	if err != nil {
		return err
	}
	defer out.Close()
	return writeSnapshot(out, snap, format, cfg.Output.Pretty)
}

// watchLoop re-analyzes the tree whenever watched files change, until the
// context is cancelled. The watcher is paused during re-analysis so edits
// made meanwhile accumulate instead of firing mid-run.
func watchLoop(ctx context.Context, an *analyzer.Analyzer, cfg *config.Config, rootDir, format string) error {
	fw, err := watcher.NewFileWatcher(rootDir, parsers.SupportedExtensions(),
		time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	callback := func(files []string) {
		fw.Pause()
		defer fw.Resume()

		if !quiet {
			log.Printf("%d file(s) changed, re-analyzing...\n", len(files))
		}
		if err := analyzeOnce(ctx, an, cfg, rootDir, format); err != nil && ctx.Err() == nil {
			log.Printf("Re-analysis failed: %v\n", err)
		}
	}
	if err := fw.Start(ctx, callback); err != nil {
		return err
	}

	if !quiet {
		log.Println("Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return nil
}

func resolveRoot(args []string) (string, error) {
	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
