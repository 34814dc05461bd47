package entry

import (
	"context"
	"maps"
	"sync"

	"github.com/painel-financeiro/painel/pkg/upstream"
)

// StubStore keeps records in memory as form values.
type StubStore struct {
	mu      sync.Mutex
	records map[int]map[string]any
	saved   []Draft
	nextId  int
	SaveErr error
}

func NewStubStore() *StubStore {
	return &StubStore{records: make(map[int]map[string]any), nextId: 1}
}

func (s *StubStore) Put(id int, values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = maps.Clone(values)
	if id >= s.nextId {
		s.nextId = id + 1
	}
}

func (s *StubStore) Load(ctx context.Context, id int) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.records[id]
	if !ok {
		return nil, &upstream.APIError{Status: 404, Message: "not found"}
	}
	return maps.Clone(values), nil
}

func (s *StubStore) Save(ctx context.Context, id int, draft Draft) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return 0, s.SaveErr
	}
	if id == 0 {
		id = s.nextId
		s.nextId++
	}
	s.records[id] = draft.Payload()
	s.saved = append(s.saved, draft)
	return id, nil
}

func (s *StubStore) Saved() []Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Draft(nil), s.saved...)
}

func (s *StubStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int]map[string]any)
	s.saved = nil
	s.nextId = 1
}
