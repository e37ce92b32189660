// Package logging writes diagnostic artifacts of a reconciliation
// session into the log directory: raw dumps of unusable reports and the
// captured output of escalated final attempts.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/flakewrap/flakewrap/types"
)

// ArtifactWriter stores per-run diagnostic files under
// <log-dir>/<basename>-<run-id>/.
type ArtifactWriter struct {
	dir string
	mu  sync.Mutex
}

// NewArtifactWriter creates the artifact directory for one session.
func NewArtifactWriter(logDir, baseName, runID string) (*ArtifactWriter, error) {
	if logDir == "" || baseName == "" || runID == "" {
		return nil, fmt.Errorf("logDir, baseName and runID are all required")
	}
	dir := filepath.Join(logDir, fmt.Sprintf("%s-%s", baseName, runID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// Dir returns the artifact directory of this session.
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// WriteRawReport keeps the raw bytes of a report that could not be
// parsed, so a truncated or corrupted log survives for diagnosis.
func (w *ArtifactWriter) WriteRawReport(raw []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, "report-raw.txt")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write raw report dump: %w", err)
	}
	log.Info("Kept raw report dump", "path", path, "bytes", len(raw))
	return nil
}

// WriteCaseOutput keeps the console output of an escalated final attempt,
// with ANSI escape sequences stripped so the file is greppable.
func (w *ArtifactWriter) WriteCaseOutput(id types.TestCaseID, output []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := fmt.Sprintf("%s.last-attempt.log", sanitizeFilename(id.FilterArg()))
	path := filepath.Join(w.dir, name)
	clean := stripansi.Strip(string(output))
	if err := os.WriteFile(path, []byte(clean), 0644); err != nil {
		return fmt.Errorf("failed to write case output: %w", err)
	}
	log.Info("Kept escalated attempt output", "case", id, "path", path)
	return nil
}

// sanitizeFilename maps a case filter argument to a safe file name.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}
