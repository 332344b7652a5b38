// Package localstore persists the JSON artifacts on the local filesystem.
// It is the fallback read path and the staging area for blob uploads.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/ports"
)

// Artifact file names, shared with the blob uploader.
const (
	EventsFile       = "tr_events.json"
	SourcesFile      = "tr_sources.json"
	AssociationsFile = "tr_associations.json"
	AggregateFile    = "tr_api.json"
)

// ArtifactFiles lists every artifact written per run.
var ArtifactFiles = []string{EventsFile, SourcesFile, AssociationsFile, AggregateFile}

// Store reads and writes artifacts under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

var _ ports.ArtifactStore = (*Store)(nil)

// New wires the artifact directory.
func New(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, logger: log}
}

// LoadCollections reads whichever artifacts exist; missing files default to
// empty collections so a fresh checkout still works.
func (s *Store) LoadCollections(_ context.Context) (ports.Collections, error) {
	cols := ports.Collections{
		Sources:      map[string]domain.Source{},
		Associations: map[string]domain.Association{},
	}

	if err := s.readJSON(EventsFile, &cols.Events); err != nil {
		return ports.Collections{}, err
	}
	if err := s.readJSON(SourcesFile, &cols.Sources); err != nil {
		return ports.Collections{}, err
	}
	if err := s.readJSON(AssociationsFile, &cols.Associations); err != nil {
		return ports.Collections{}, err
	}

	var agg domain.Aggregate
	switch err := s.readJSON(AggregateFile, &agg); {
	case err != nil:
		return ports.Collections{}, err
	case agg.Metadata.LastUpdated != "":
		cols.Aggregate = &agg
	}

	return cols, nil
}

// SaveCollections writes all four artifacts together. A partial write of one
// collection would let the aggregate's redundant copies drift.
func (s *Store) SaveCollections(_ context.Context, cols ports.Collections) error {
	if cols.Aggregate == nil {
		return fmt.Errorf("save collections: aggregate must be projected before saving")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := s.writeJSON(EventsFile, cols.Events); err != nil {
		return err
	}
	if err := s.writeJSON(SourcesFile, cols.Sources); err != nil {
		return err
	}
	if err := s.writeJSON(AssociationsFile, cols.Associations); err != nil {
		return err
	}
	if err := s.writeJSON(AggregateFile, cols.Aggregate); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("artifacts saved", "dir", s.dir, "files", len(ArtifactFiles))
	}
	return nil
}

// ReadArtifacts returns the raw bytes of every artifact, keyed by file name.
// Used to hand the exact persisted form to the blob uploader.
func (s *Store) ReadArtifacts(_ context.Context) (map[string][]byte, error) {
	files := make(map[string][]byte, len(ArtifactFiles))
	for _, name := range ArtifactFiles {
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", name, err)
		}
		files[name] = raw
	}
	return files, nil
}

func (s *Store) readJSON(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		if s.logger != nil {
			s.logger.Debug("artifact missing, defaulting to empty", "file", name)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
