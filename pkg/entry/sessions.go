package entry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/painel-financeiro/painel/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrDraftNotFound = errors.New("draft not found")

type openDraft struct {
	mu       sync.Mutex
	id       string
	kind     string
	owner    string
	recordId int
	editor   *Editor
	lastUsed time.Time
}

// Sessions keeps the open drafts of every browser session. A draft is visible only to
// the session that opened it and is dropped after idleTTL without use. When an owner
// already has maxOpen drafts the least recently used one is discarded.
type Sessions struct {
	mu      sync.Mutex
	drafts  map[string]*openDraft
	maxOpen int
	idleTTL time.Duration
	clock   utils.Clock
}

func NewSessions(maxOpen int, idleTTL time.Duration, clock utils.Clock) *Sessions {
	return &Sessions{
		drafts:  make(map[string]*openDraft),
		maxOpen: maxOpen,
		idleTTL: idleTTL,
		clock:   clock,
	}
}

func (s *Sessions) add(owner string, recordId int, editor *Editor) *openDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)

	if s.maxOpen > 0 {
		var owned []*openDraft
		for _, d := range s.drafts {
			if d.owner == owner {
				owned = append(owned, d)
			}
		}
		for len(owned) >= s.maxOpen {
			oldest := 0
			for i, d := range owned {
				if d.lastUsed.Before(owned[oldest].lastUsed) {
					oldest = i
				}
			}
			log.Warnf("session has %d open drafts, discarding draft %s", len(owned), owned[oldest].id)
			s.removeLocked(owned[oldest].id)
			owned = append(owned[:oldest], owned[oldest+1:]...)
		}
	}

	d := &openDraft{
		id:       uuid.NewString(),
		kind:     editor.variant.Kind,
		owner:    owner,
		recordId: recordId,
		editor:   editor,
		lastUsed: now,
	}
	s.drafts[d.id] = d
	return d
}

// acquire returns the draft locked for exclusive use; release unlocks it.
func (s *Sessions) acquire(owner, kind, id string) (d *openDraft, release func(), err error) {
	s.mu.Lock()
	now := s.clock.Now()
	d, ok := s.drafts[id]
	if ok && s.expired(d, now) {
		s.removeLocked(id)
		ok = false
	}
	if !ok || d.owner != owner || d.kind != kind {
		s.mu.Unlock()
		return nil, nil, ErrDraftNotFound
	}
	d.lastUsed = now
	s.mu.Unlock()

	d.mu.Lock()
	// the previous holder may have submitted or cancelled the draft while we waited
	s.mu.Lock()
	current := s.drafts[id]
	s.mu.Unlock()
	if current != d {
		d.mu.Unlock()
		return nil, nil, ErrDraftNotFound
	}
	return d, d.mu.Unlock, nil
}

func (s *Sessions) discard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// Sweep drops idle drafts and returns how many were dropped.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.clock.Now())
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Sessions) expired(d *openDraft, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(d.lastUsed) > s.idleTTL
}

func (s *Sessions) sweepLocked(now time.Time) int {
	dropped := 0
	for id, d := range s.drafts {
		if s.expired(d, now) {
			s.removeLocked(id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Debugf("dropped %d idle drafts", dropped)
	}
	return dropped
}

func (s *Sessions) removeLocked(id string) {
	delete(s.drafts, id)
}
