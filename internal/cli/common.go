package cli

import (
	"io"
	"os"

	"github.com/beanviz/bean/internal/analyzer"
	"github.com/beanviz/bean/internal/config"
)

// newAnalyzer builds an analyzer from loaded configuration and the global
// quiet flag.
func newAnalyzer(cfg *config.Config) *analyzer.Analyzer {
	opts := []analyzer.Option{
		analyzer.WithProgress(NewCLIProgressReporter(quiet)),
	}
	if cfg.Analysis.Workers > 0 {
		opts = append(opts, analyzer.WithWorkers(cfg.Analysis.Workers))
	}
	if cfg.Analysis.CacheSize > 0 {
		opts = append(opts, analyzer.WithCache(cfg.Analysis.CacheSize))
	}
	return analyzer.New(opts...)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openOutput returns stdout when path is empty, otherwise creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
