package analyzer

import "time"

// ProgressReporter receives extraction progress callbacks. Implementations
// must tolerate concurrent calls to OnFileExtracted.
type ProgressReporter interface {
	OnExtractionStart(totalFiles int)
	OnFileExtracted(path string)
	OnAssemblyComplete(moduleCount, edgeCount int, duration time.Duration)
}

// NoOpProgressReporter ignores all progress events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnExtractionStart(int)                      {}
func (NoOpProgressReporter) OnFileExtracted(string)                     {}
func (NoOpProgressReporter) OnAssemblyComplete(int, int, time.Duration) {}
