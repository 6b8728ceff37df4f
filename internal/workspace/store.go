// Package workspace holds the application state: the document store, both
// transcripts and the focused repository source. Every mutation hands a full
// snapshot to the Mirror once the lock is released.
package workspace

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"advisor-chat-be/internal/entity"

	"github.com/google/uuid"
)

var (
	ErrSourceNotFound      = errors.New("source not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotRepositorySource = errors.New("source is not a repository source")
	ErrInvalidCategory     = errors.New("invalid category")
)

// Mirror receives a snapshot after every mutation. Implementations must not block.
type Mirror interface {
	Mirror(Snapshot)
}

type MirrorFunc func(Snapshot)

func (f MirrorFunc) Mirror(s Snapshot) { f(s) }

// MaxSourceNameLength matches the width of the stored name column, in characters.
const MaxSourceNameLength = 255

func clampName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxSourceNameLength {
		return name
	}
	return string(runes[:MaxSourceNameLength])
}

type NewSource struct {
	Name      string
	Kind      entity.SourceKind
	Category  entity.Category
	Content   string
	MediaType string
}

type Store struct {
	mu          sync.RWMutex
	version     uint64
	sources     []entity.Source
	transcripts map[entity.Category][]entity.Message
	focused     uuid.UUID

	mirror Mirror
	now    func() time.Time
}

func NewStore(mirror Mirror) *Store {
	if mirror == nil {
		mirror = MirrorFunc(func(Snapshot) {})
	}
	s := &Store{
		mirror: mirror,
		now:    time.Now,
	}
	s.transcripts = map[entity.Category][]entity.Message{
		entity.CategoryAdvisor:    {FirstRunWelcome(entity.CategoryAdvisor, s.now())},
		entity.CategoryRepository: {FirstRunWelcome(entity.CategoryRepository, s.now())},
	}
	return s
}

// commit bumps the version and returns the snapshot to mirror. Caller holds the lock.
func (s *Store) commit() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Store) publish(snap Snapshot) {
	s.mirror.Mirror(snap)
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.sources {
		if s.sources[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *Store) AddSource(n NewSource) (entity.Source, error) {
	if !n.Category.Valid() {
		return entity.Source{}, ErrInvalidCategory
	}

	s.mu.Lock()
	src := entity.Source{
		Id:        uuid.New(),
		Name:      clampName(n.Name),
		Kind:      n.Kind,
		Category:  n.Category,
		Content:   n.Content,
		MediaType: n.MediaType,
		Selected:  true,
		Theme:     entity.DefaultTheme,
		CreatedAt: s.now(),
	}
	s.sources = append(s.sources, src)
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return src, nil
}

func (s *Store) UpdateSource(id uuid.UUID, name string, theme entity.Theme) (entity.Source, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return entity.Source{}, ErrSourceNotFound
	}
	s.sources[i].Name = clampName(name)
	s.sources[i].Theme = theme
	src := s.sources[i]
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return src, nil
}

// RemoveSource deletes a source and clears the focus when it pointed at it.
func (s *Store) RemoveSource(id uuid.UUID) (entity.Source, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return entity.Source{}, ErrSourceNotFound
	}
	removed := s.sources[i]
	s.sources = append(s.sources[:i], s.sources[i+1:]...)
	if s.focused == id {
		s.focused = uuid.Nil
	}
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return removed, nil
}

func (s *Store) ToggleSelected(id uuid.UUID) (entity.Source, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return entity.Source{}, ErrSourceNotFound
	}
	s.sources[i].Selected = !s.sources[i].Selected
	src := s.sources[i]
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return src, nil
}

// Focus makes a repository source the sole context of repository chat and
// announces it in the repository transcript.
func (s *Store) Focus(id uuid.UUID) (entity.Message, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return entity.Message{}, ErrSourceNotFound
	}
	src := s.sources[i]
	if src.Category != entity.CategoryRepository {
		s.mu.Unlock()
		return entity.Message{}, ErrNotRepositorySource
	}

	now := s.now()
	msg := entity.Message{
		Id:        fmt.Sprintf("w-%s-%d", src.Id, now.UnixMilli()),
		Role:      entity.RoleAssistant,
		Text:      FocusWelcome(src.Name),
		CreatedAt: now,
	}
	s.focused = id
	s.transcripts[entity.CategoryRepository] = append(s.transcripts[entity.CategoryRepository], msg)
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return msg, nil
}

// ClearAll empties the document store and reseeds each transcript with one welcome message.
func (s *Store) ClearAll() {
	s.mu.Lock()
	now := s.now()
	s.sources = nil
	s.focused = uuid.Nil
	s.transcripts = map[entity.Category][]entity.Message{
		entity.CategoryAdvisor:    {ResetWelcome(entity.CategoryAdvisor, now)},
		entity.CategoryRepository: {ResetWelcome(entity.CategoryRepository, now)},
	}
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Store) AppendMessage(category entity.Category, msg entity.Message) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}

	s.mu.Lock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.transcripts[category] = append(s.transcripts[category], msg)
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

func (s *Store) ReplaceMessageText(category entity.Category, id, text string) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}

	s.mu.Lock()
	msgs := s.transcripts[category]
	found := false
	for i := range msgs {
		if msgs[i].Id == id {
			msgs[i].Text = text
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	snap := s.commit()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Sources lists the sources of one category in insertion order.
func (s *Store) Sources(category entity.Category) []entity.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Category == category {
			out = append(out, src)
		}
	}
	return out
}

// ContextSources returns the sources sent along with a query of the given category.
// Repository chat uses the focused source alone when there is one.
func (s *Store) ContextSources(category entity.Category) []entity.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == entity.CategoryRepository && s.focused != uuid.Nil {
		if i := s.indexOf(s.focused); i >= 0 {
			return []entity.Source{s.sources[i]}
		}
	}

	out := make([]entity.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Category == category && src.Selected {
			out = append(out, src)
		}
	}
	return out
}

func (s *Store) Source(id uuid.UUID) (entity.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.sources[i], true
	}
	return entity.Source{}, false
}

func (s *Store) Transcript(category entity.Category) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.Message(nil), s.transcripts[category]...)
}

func (s *Store) Message(category entity.Category, id string) (entity.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.transcripts[category] {
		if m.Id == id {
			return m, true
		}
	}
	return entity.Message{}, false
}

// Focused returns the focused repository source, if any.
func (s *Store) Focused() (entity.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.focused == uuid.Nil {
		return entity.Source{}, false
	}
	if i := s.indexOf(s.focused); i >= 0 {
		return s.sources[i], true
	}
	return entity.Source{}, false
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:    s.version,
		Sources:    append([]entity.Source(nil), s.sources...),
		Advisor:    append([]entity.Message(nil), s.transcripts[entity.CategoryAdvisor]...),
		Repository: append([]entity.Message(nil), s.transcripts[entity.CategoryRepository]...),
		Focused:    s.focused,
	}
}

// Load replaces the whole state without mirroring it back. A focus that points
// at a missing or non-repository source is dropped.
func (s *Store) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = append([]entity.Source(nil), snap.Sources...)
	s.transcripts = map[entity.Category][]entity.Message{
		entity.CategoryAdvisor:    append([]entity.Message(nil), snap.Advisor...),
		entity.CategoryRepository: append([]entity.Message(nil), snap.Repository...),
	}
	s.focused = uuid.Nil
	if i := s.indexOf(snap.Focused); snap.Focused != uuid.Nil && i >= 0 && s.sources[i].Category == entity.CategoryRepository {
		s.focused = snap.Focused
	}
}
