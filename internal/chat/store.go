package chat

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	// ErrProfileNotFound is the only lookup failure surfaced as an error;
	// unknown dialog ids in queries yield empty pages instead.
	ErrProfileNotFound = errors.New("profile not found")
	ErrDialogNotFound  = errors.New("dialog not found")
)

// Store owns all chat state: the profile pool, the dialog records and the
// per-dialog append-only message logs. A single mutex guards dialogs and
// logs together so lastMessage/updatedAt are never observed out of sync
// with the log.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	dialogs  map[string]*Dialog
	messages map[string][]Message

	defaultPageSize int
	maxPageSize     int
}

func NewStore(defaultPageSize, maxPageSize int) *Store {
	return &Store{
		profiles:        make(map[string]Profile),
		dialogs:         make(map[string]*Dialog),
		messages:        make(map[string][]Message),
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// Seed populates the store with ceil(dialogCount*1.5) profiles and
// dialogCount dialogs, each holding one initial message authored by its
// first participant. Participants are drawn uniformly, distinct within a
// dialog; dialogs may share participants.
func (s *Store) Seed(synth *Synthesizer, dialogCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileCount := int(math.Ceil(float64(dialogCount) * 1.5))
	pool := make([]Profile, 0, profileCount)
	for i := 0; i < profileCount; i++ {
		p := synth.NewProfile()
		s.profiles[p.ID] = p
		pool = append(pool, p)
	}

	for i := 0; i < dialogCount; i++ {
		first := pool[synth.PickIndex(len(pool))]
		second := first
		for second.ID == first.ID {
			second = pool[synth.PickIndex(len(pool))]
		}

		dialogID := uuid.NewString()
		initial := synth.Synthesize(dialogID, first.ID)

		s.dialogs[dialogID] = &Dialog{
			ID:             dialogID,
			ParticipantIDs: [2]string{first.ID, second.ID},
			LastMessage:    initial,
			UpdatedAt:      initial.CreatedAt,
		}
		s.messages[dialogID] = []Message{initial}
	}
}

// GetProfile looks a profile up by id.
func (s *Store) GetProfile(id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("get profile %s: %w", id, ErrProfileNotFound)
	}
	return p, nil
}

// AppendMessage appends msg to its dialog's log and rewrites the dialog's
// lastMessage/updatedAt cache. This is the only mutation path after Seed.
func (s *Store) AppendMessage(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dialogs[msg.DialogID]
	if !ok {
		return fmt.Errorf("append to dialog %s: %w", msg.DialogID, ErrDialogNotFound)
	}
	s.messages[msg.DialogID] = append(s.messages[msg.DialogID], msg)
	d.LastMessage = msg
	d.UpdatedAt = msg.CreatedAt
	return nil
}

// Dialogs returns a snapshot copy of every dialog. The generator re-reads
// this at the start of each tick, so dialogs added after seeding are
// advanced too.
func (s *Store) Dialogs() []Dialog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Dialog, 0, len(s.dialogs))
	for _, d := range s.dialogs {
		out = append(out, *d)
	}
	return out
}

// ListMessages pages over a dialog's log, most recent first. An unknown
// dialog is an empty page, not an error.
func (s *Store) ListMessages(dialogID string, offset, limit int) Page[Message] {
	s.mu.RLock()
	log := s.messages[dialogID]
	sorted := make([]Message, len(log))
	copy(sorted, log)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	return paginate(sorted, offset, s.clampLimit(limit))
}

// ListDialogs pages over dialogs sorted by updatedAt descending, optionally
// filtered to those involving participantID. Total reflects the filtered
// count.
func (s *Store) ListDialogs(offset, limit int, participantID string) Page[Dialog] {
	dialogs := s.Dialogs()

	if participantID != "" {
		dialogs = lo.Filter(dialogs, func(d Dialog, _ int) bool {
			return d.HasParticipant(participantID)
		})
	}
	sort.SliceStable(dialogs, func(i, j int) bool {
		return dialogs[i].UpdatedAt > dialogs[j].UpdatedAt
	})
	return paginate(dialogs, offset, s.clampLimit(limit))
}

func (s *Store) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	return limit
}

// paginate slices [offset, offset+limit) out of items. Out-of-range offsets
// yield empty items with the real total.
func paginate[T any](items []T, offset, limit int) Page[T] {
	total := len(items)
	if offset < 0 {
		offset = 0
	}

	page := make([]T, 0, limit)
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = append(page, items[offset:end]...)
	}
	return Page[T]{
		Items:   page,
		Total:   total,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}
