package store

import (
	"context"
	"sync"
	"time"

	"credgate/internal/accessrequest/models"
)

// InMemoryStore keeps access requests in memory. It is the default backend
// for development and the reference implementation for store semantics.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*models.AccessRequest
	order    []string
}

// New constructs an empty in-memory access request store.
func New() *InMemoryStore {
	return &InMemoryStore{requests: make(map[string]*models.AccessRequest)}
}

func (s *InMemoryStore) GetAll(_ context.Context) ([]*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.AccessRequest, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.requests[id].Clone())
	}
	return result, nil
}

func (s *InMemoryStore) GetByEmployer(_ context.Context, employerID string) ([]*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*models.AccessRequest
	for _, id := range s.order {
		if r := s.requests[id]; r.EmployerID == employerID {
			result = append(result, r.Clone())
		}
	}
	return result, nil
}

func (s *InMemoryStore) GetByStudent(_ context.Context, enrollmentID string) ([]*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*models.AccessRequest
	for _, id := range s.order {
		if r := s.requests[id]; r.StudentEnrollmentID == enrollmentID {
			result = append(result, r.Clone())
		}
	}
	return result, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return request.Clone(), nil
}

func (s *InMemoryStore) Insert(_ context.Context, request *models.AccessRequest) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := request.Clone()
	stored.ID = NewRequestID()
	stored.RequestedAt = time.Now()
	s.requests[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, mutate func(*models.AccessRequest) error) (*models.AccessRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, false, nil
	}
	// Mutate a copy so a failed mutation leaves the stored record untouched.
	candidate := request.Clone()
	if err := mutate(candidate); err != nil {
		return nil, true, err
	}
	s.requests[id] = candidate
	return candidate.Clone(), true, nil
}
