package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beanviz/bean/internal/analyzer"
	"github.com/beanviz/bean/internal/config"
	"github.com/beanviz/bean/internal/diff"
	"github.com/beanviz/bean/internal/discover"
	"github.com/beanviz/bean/internal/gitsnap"
	"github.com/beanviz/bean/internal/model"
)

var (
	diffPath      string
	diffThreshold float64
	diffOutput    string
	diffFormat    string
	diffExitCode  bool
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff [base-ref] [head-ref]",
	Short: "Compare structural models across versions",
	Long: `Diff analyzes two versions of the repository and reports structural
changes per module, class, and function: added, removed, changed, and
renamed entities with complexity and signature deltas.

The base version is read straight from the git object store; the working
tree is never touched. Without arguments the configured base ref
(default: main) is compared against the working tree.

Examples:
  # Working tree against the configured base ref
  bean diff

  # Working tree against a specific ref
  bean diff HEAD~5

  # Two refs against each other
  bean diff v1.2.0 v1.3.0

  # Machine-readable report, non-zero exit on change
  bean diff --format json --exit-code
`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVarP(&diffPath, "path", "p", ".", "Repository directory")
	diffCmd.Flags().Float64Var(&diffThreshold, "threshold", 0, "Rename similarity threshold in (0, 1] (default from config)")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "Write the report to a file instead of stdout")
	diffCmd.Flags().StringVar(&diffFormat, "format", "", "Output format: text or json (default from config)")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "Exit with code 1 when structural changes exist")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling diff...")
		cancel()
	}()

	rootDir, err := resolveRoot([]string{diffPath})
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	baseRef := cfg.Diff.BaseRef
	if len(args) > 0 {
		baseRef = args[0]
	}
	headRef := ""
	if len(args) > 1 {
		headRef = args[1]
	}

	d, err := discover.New(rootDir, cfg.Paths.Include, cfg.Paths.Exclude,
		discover.WithMaxFileSize(cfg.Analysis.MaxFileSize))
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}

	provider := gitsnap.NewProvider(nil)
	baseSources, baseInfo, err := provider.SourcesAt(rootDir, baseRef, d.Match)
	if err != nil {
		return err
	}

	an := newAnalyzer(cfg)
	defer an.Close()

	baseSnap, err := an.Analyze(ctx, rootDir, baseSources)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", baseRef, err)
	}

	headSnap, headName, err := analyzeHead(ctx, an, provider, d, rootDir, headRef)
	if err != nil {
		return err
	}

	threshold := cfg.Diff.RenameThreshold
	if cmd.Flags().Changed("threshold") {
		threshold = diffThreshold
	}
	opts := []diff.Option{diff.WithThreshold(threshold)}
	if cfg.Analysis.Workers > 0 {
		opts = append(opts, diff.WithWorkers(cfg.Analysis.Workers))
	}
	report := diff.New(opts...).Compare(baseSnap, headSnap)
	report.Meta.BaseRef = refLabel(baseInfo)
	report.Meta.HeadRef = headName

	format := cfg.Output.Format
	if diffFormat != "" {
		format = diffFormat
	}
	out, err := openOutput(diffOutput)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeReport(out, report, format, cfg.Output.Pretty); err != nil {
		return err
	}

	if diffExitCode && !report.Empty() {
		out.Close()
		os.Exit(1)
	}
	return nil
}

// analyzeHead builds the head snapshot, either from a second ref or from the
// working tree.
func analyzeHead(ctx context.Context, an *analyzer.Analyzer, provider *gitsnap.Provider, d *discover.Discovery, rootDir, headRef string) (*model.Snapshot, string, error) {
	if headRef == "" {
		sources, err := d.Sources()
		if err != nil {
			return nil, "", fmt.Errorf("file discovery failed: %w", err)
		}
		snap, err := an.Analyze(ctx, rootDir, sources)
		if err != nil {
			return nil, "", fmt.Errorf("analyzing working tree: %w", err)
		}
		return snap, "worktree", nil
	}

	sources, info, err := provider.SourcesAt(rootDir, headRef, d.Match)
	if err != nil {
		return nil, "", err
	}
	snap, err := an.Analyze(ctx, rootDir, sources)
	if err != nil {
		return nil, "", fmt.Errorf("analyzing %s: %w", headRef, err)
	}
	return snap, refLabel(info), nil
}

func refLabel(ref gitsnap.Ref) string {
	commit := ref.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if ref.Name == commit || ref.Name == ref.Commit {
		return commit
	}
	return ref.Name + "@" + commit
}
