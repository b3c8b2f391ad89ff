package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"credgate/internal/accessrequest/models"
	pkgerrors "credgate/pkg/domain-errors"
)

// envelopeVersion tags the persisted layout so future schema changes can
// migrate old files instead of discarding them.
const envelopeVersion = 1

// envelope is the persisted state layout: a single named collection of
// records, serialized as an ordered sequence.
type envelope struct {
	Version  int                     `json:"version"`
	Requests []*models.AccessRequest `json:"requests"`
}

// FileStore persists the whole collection in a single JSON file. Every write
// rewrites the collection atomically (temp file + rename); a partial failure
// never leaves a half-written file behind.
//
// Reads are fail-open: an unreadable or corrupt file degrades to an empty
// collection so the workflow stays available. Writes are fail-loud: storage
// failures surface as persistence errors rather than silently dropping data.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFile constructs a file-backed store at path. The file is created on the
// first write.
func NewFile(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) GetAll(_ context.Context) ([]*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *FileStore) GetByEmployer(_ context.Context, employerID string) ([]*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.AccessRequest
	for _, r := range s.load() {
		if r.EmployerID == employerID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *FileStore) GetByStudent(_ context.Context, enrollmentID string) ([]*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.AccessRequest
	for _, r := range s.load() {
		if r.StudentEnrollmentID == enrollmentID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *FileStore) GetByID(_ context.Context, id string) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.load() {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Insert(_ context.Context, request *models.AccessRequest) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := s.load()
	stored := request.Clone()
	stored.ID = NewRequestID()
	stored.RequestedAt = time.Now()
	requests = append(requests, stored)
	if err := s.write(requests); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (s *FileStore) Update(_ context.Context, id string, mutate func(*models.AccessRequest) error) (*models.AccessRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := s.load()
	for i, r := range requests {
		if r.ID != id {
			continue
		}
		candidate := r.Clone()
		if err := mutate(candidate); err != nil {
			return nil, true, err
		}
		requests[i] = candidate
		if err := s.write(requests); err != nil {
			return nil, true, err
		}
		return candidate.Clone(), true, nil
	}
	return nil, false, nil
}

// load reads the collection, degrading to empty on any read failure.
func (s *FileStore) load() []*models.AccessRequest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && s.logger != nil {
			s.logger.Warn("access request file unreadable, treating as empty",
				"path", s.path,
				"error", err,
			)
		}
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if s.logger != nil {
			s.logger.Warn("access request file corrupt, treating as empty",
				"path", s.path,
				"error", err,
			)
		}
		return nil
	}
	return env.Requests
}

// write rewrites the whole collection atomically.
func (s *FileStore) write(requests []*models.AccessRequest) error {
	data, err := json.MarshalIndent(envelope{Version: envelopeVersion, Requests: requests}, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to encode access requests")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".requests-*")
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to stage access request file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to write access request file")
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to flush access request file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to replace access request file")
	}
	return nil
}
