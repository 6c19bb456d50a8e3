// Package storage manages the per-run upload and output directories.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// OutputPrefix is prepended to the uploaded filename to name the result.
const OutputPrefix = "Reconciled_"

// Store hands out isolated working directories for reconciliation runs.
type Store struct {
	uploadDir string
	outputDir string
	retain    bool
}

// Run is one upload and its result location.
type Run struct {
	ID         string
	Filename   string
	InputPath  string
	OutputName string
	OutputPath string
}

// New creates the base directories if needed.
func New(uploadDir, outputDir string, retain bool) (*Store, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Store{uploadDir: uploadDir, outputDir: outputDir, retain: retain}, nil
}

// NewRun reserves directories for one upload. The filename must already be sanitized.
func (s *Store) NewRun(filename string) (*Run, error) {
	if filename == "" {
		return nil, errors.New("empty filename")
	}
	id := uuid.NewString()
	in := filepath.Join(s.uploadDir, id)
	out := filepath.Join(s.outputDir, id)
	for _, dir := range []string{in, out} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}
	outputName := OutputPrefix + filename
	return &Run{
		ID:         id,
		Filename:   filename,
		InputPath:  filepath.Join(in, filename),
		OutputName: outputName,
		OutputPath: filepath.Join(out, outputName),
	}, nil
}

// Retains reports whether run files are kept after the response.
func (s *Store) Retains() bool {
	return s.retain
}

// Cleanup removes the run directories unless the store retains files.
func (s *Store) Cleanup(run *Run) error {
	if s.retain || run == nil {
		return nil
	}
	return errors.Join(
		os.RemoveAll(filepath.Dir(run.InputPath)),
		os.RemoveAll(filepath.Dir(run.OutputPath)),
	)
}
