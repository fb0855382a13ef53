package roster

import (
	"sync"

	"github.com/samber/lo"
)

// Participant is one member of the room roster.
type Participant struct {
	ID          string
	DisplayName string
}

// Store holds the live roster for one session. Every joined event carries
// the complete authoritative list, so the only write paths are a full
// replace and a removal by id; there is no incremental add. The full
// replace keeps the roster consistent with the server's last known view
// even when individual join events are missed or arrive out of order.
type Store struct {
	mu           sync.RWMutex
	participants []Participant
}

// New returns an empty roster store.
func New() *Store {
	return &Store{}
}

// ReplaceAll swaps the roster contents for the given authoritative list,
// preserving its order. Duplicate ids keep their first occurrence so the
// roster never holds two entries for one participant.
func (s *Store) ReplaceAll(list []Participant) {
	deduped := lo.UniqBy(list, func(p Participant) string {
		return p.ID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = deduped
}

// RemoveByID removes the participant with the given id. Removing an id
// that is not present is a no-op: duplicate or late-arriving leave
// notices must not disturb the session.
func (s *Store) RemoveByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = lo.Reject(s.participants, func(p Participant, _ int) bool {
		return p.ID == id
	})
}

// All returns a copy of the roster in its stored order.
func (s *Store) All() []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Len reports the number of participants currently in the roster.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}
