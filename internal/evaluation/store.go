package evaluation

import (
	"log"
	"strings"

	"github.com/dotcommander/evalpanel/internal/template"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Store holds the single evaluation currently being edited. Persisted
// snapshots live elsewhere and are passed in and out explicitly.
type Store struct {
	active *Evaluation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Active returns the evaluation being edited.
func (s *Store) Active() (*Evaluation, error) {
	if s.active == nil {
		return nil, ErrNoActive
	}
	return s.active, nil
}

// LoadTemplate replaces the active evaluation with a fresh one.
func (s *Store) LoadTemplate(groups []template.Group) *Evaluation {
	s.active = LoadTemplate(groups)
	return s.active
}

// Hydrate replaces the active evaluation with rec merged onto groups and
// returns the record groups that were dropped.
func (s *Store) Hydrate(groups []template.Group, rec Record) (*Evaluation, []string) {
	dropped := DroppedGroups(groups, rec)
	if len(dropped) > 0 {
		log.Printf("WARNING: groups no longer in template, answers dropped: %s", strings.Join(dropped, ", "))
	}
	s.active = Hydrate(groups, rec)
	return s.active, dropped
}

// SetResponse records a response on the active evaluation.
func (s *Store) SetResponse(groupID string, index int, r types.Response, justification string) error {
	e, err := s.Active()
	if err != nil {
		return err
	}
	return e.SetResponse(groupID, index, r, justification)
}

// SetHeader replaces the active evaluation header.
func (s *Store) SetHeader(h Header) error {
	e, err := s.Active()
	if err != nil {
		return err
	}
	e.Header = h
	return nil
}

// Snapshot returns a persistable copy of the active evaluation.
func (s *Store) Snapshot() (Record, error) {
	e, err := s.Active()
	if err != nil {
		return Record{}, err
	}
	return Snapshot(e), nil
}

// ComputeDisplay scores the active evaluation.
func (s *Store) ComputeDisplay() (map[string]Display, error) {
	e, err := s.Active()
	if err != nil {
		return nil, err
	}
	return ComputeDisplay(e), nil
}
