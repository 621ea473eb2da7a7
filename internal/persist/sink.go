// Package persist writes annotation tables to their destinations as CSV,
// merging with any file already there.
package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emoscribe/emoscribe/internal/annotate"
	"github.com/emoscribe/emoscribe/internal/observability"
)

// Destination tokens. Unknown tokens are ignored, not errors.
const (
	TokenOutput    = "output"
	TokenDesktop   = "desktop"
	TokenDownloads = "downloads"
)

// WriteError aggregates per-destination write failures. The sink keeps
// going after a failed destination, so successful paths are still
// returned alongside this error.
type WriteError struct {
	Failures map[string]error // destination directory -> failure
}

func (e *WriteError) Error() string {
	dirs := make([]string, 0, len(e.Failures))
	for dir := range e.Failures {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	parts := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		parts = append(parts, fmt.Sprintf("%s: %v", dir, e.Failures[dir]))
	}
	return "write failed for " + strings.Join(parts, "; ")
}

// Sink resolves destination tokens to directories and writes the table.
type Sink struct {
	outputDir string // directory behind the "output" token
	home      string // base for desktop/downloads; tests override it
	logger    zerolog.Logger
}

// NewSink creates a sink whose "output" token maps to outputDir.
func NewSink(outputDir string) *Sink {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Sink{
		outputDir: outputDir,
		home:      home,
		logger:    observability.GetLogger().With().Str("component", "persist").Logger(),
	}
}

// Resolve maps comma-separated destination tokens to directories,
// preserving token order, dropping unknown tokens and duplicates.
func (s *Sink) Resolve(tokens string) []string {
	var dirs []string
	seen := map[string]bool{}
	for _, tok := range strings.Split(tokens, ",") {
		var dir string
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case TokenOutput:
			dir = s.outputDir
		case TokenDesktop:
			dir = filepath.Join(s.home, "Desktop")
		case TokenDownloads:
			dir = filepath.Join(s.home, "Downloads")
		default:
			if tok != "" {
				s.logger.Warn().Str("token", tok).Msg("Unknown destination token ignored")
			}
			continue
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Write persists the table to every resolved destination as
// directory/filename. An existing file is merged with new rows on top;
// an unparsable existing file is overwritten with a logged warning. A
// failed destination does not stop the remaining ones. Returned paths
// are the destinations actually written; err aggregates any failures.
func (s *Sink) Write(table *annotate.Table, destTokens, filename string) ([]string, error) {
	newRows := table.Rows()

	var written []string
	failures := map[string]error{}
	for _, dir := range s.Resolve(destTokens) {
		path, err := s.writeOne(dir, filename, newRows)
		if err != nil {
			s.logger.Error().Err(err).Str("dir", dir).Msg("Destination write failed")
			observability.RecordDestinationWrite(dir, false)
			failures[dir] = err
			continue
		}
		observability.RecordDestinationWrite(dir, true)
		s.logger.Info().Str("path", path).Int("new_rows", len(newRows)).Msg("Annotation table saved")
		written = append(written, path)
	}

	if len(failures) > 0 {
		return written, &WriteError{Failures: failures}
	}
	return written, nil
}

func (s *Sink) writeOne(dir, filename string, newRows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	path := filepath.Join(dir, filename)

	oldRows := s.readExisting(path)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(annotate.Columns); err != nil {
		return "", err
	}
	// New rows go above whatever was already in the file.
	if err := w.WriteAll(newRows); err != nil {
		return "", err
	}
	if err := w.WriteAll(oldRows); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// readExisting returns the data rows of an existing file, or nil when the
// file is absent or cannot be parsed. The unparsable case is deliberate
// overwrite behavior and must be visible in the logs.
func (s *Sink) readExisting(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Cannot read existing file, overwriting")
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(annotate.Columns)
	records, err := r.ReadAll()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Existing file is not parseable CSV, overwriting")
		return nil
	}
	if len(records) <= 1 {
		return nil // empty or header only
	}
	return records[1:] // drop header
}
