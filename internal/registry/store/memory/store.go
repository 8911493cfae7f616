// Package memory provides the in-memory registry store. Transactions run
// against a deep copy of the whole state; commit swaps the copy in under
// the store lock, so a failed closure leaves nothing behind.
package memory

import (
	"context"
	"sync"

	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	"cultiva/pkg/platform/sentinel"
)

type collabKey struct {
	farm  domain.FarmID
	actor domain.Actor
}

type shareKey struct {
	farm        domain.FarmID
	participant domain.Actor
}

type historyKey struct {
	farm  domain.FarmID
	entry uint32
}

type state struct {
	admin       domain.Actor
	paused      bool
	farmCounter uint64

	farms          map[domain.FarmID]models.Farm
	categories     map[domain.FarmID]models.Category
	certifications map[domain.FarmID]models.Certification
	statuses       map[domain.FarmID]models.FarmStatus
	collaborators  map[collabKey]models.Collaborator
	shares         map[shareKey]models.RevenueShare
	history        map[historyKey]models.HistoryEntry
	historyCount   map[domain.FarmID]uint32
}

func newState(admin domain.Actor) state {
	return state{
		admin:          admin,
		farms:          make(map[domain.FarmID]models.Farm),
		categories:     make(map[domain.FarmID]models.Category),
		certifications: make(map[domain.FarmID]models.Certification),
		statuses:       make(map[domain.FarmID]models.FarmStatus),
		collaborators:  make(map[collabKey]models.Collaborator),
		shares:         make(map[shareKey]models.RevenueShare),
		history:        make(map[historyKey]models.HistoryEntry),
		historyCount:   make(map[domain.FarmID]uint32),
	}
}

func (s state) clone() state {
	cloned := newState(s.admin)
	cloned.paused = s.paused
	cloned.farmCounter = s.farmCounter
	for k, v := range s.farms {
		cloned.farms[k] = v
	}
	for k, v := range s.categories {
		cloned.categories[k] = cloneCategory(v)
	}
	for k, v := range s.certifications {
		cloned.certifications[k] = v
	}
	for k, v := range s.statuses {
		cloned.statuses[k] = v
	}
	for k, v := range s.collaborators {
		cloned.collaborators[k] = cloneCollaborator(v)
	}
	for k, v := range s.shares {
		cloned.shares[k] = v
	}
	for k, v := range s.history {
		cloned.history[k] = v
	}
	for k, v := range s.historyCount {
		cloned.historyCount[k] = v
	}
	return cloned
}

func cloneCategory(c models.Category) models.Category {
	cp := c
	cp.Tags = append([]string(nil), c.Tags...)
	return cp
}

func cloneCollaborator(c models.Collaborator) models.Collaborator {
	cp := c
	cp.Permissions = append([]string(nil), c.Permissions...)
	return cp
}

// Store is the in-memory transactional registry store.
type Store struct {
	mu    sync.RWMutex
	state state
}

// New constructs an empty store with the given bootstrap admin.
func New(admin domain.Actor) *Store {
	return &Store{state: newState(admin)}
}

// View runs fn against a read-only snapshot of current state.
func (s *Store) View(_ context.Context, fn func(tx store.ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{state: &s.state})
}

// Update runs fn against a staged clone and swaps it in only when fn
// returns nil.
func (s *Store) Update(_ context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&tx{state: &staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// tx serves both read snapshots and staged mutations; Update hands it a
// clone, View the live state under RLock.
type tx struct {
	state *state
}

func (t *tx) Admin() (domain.Actor, error) {
	return t.state.admin, nil
}

func (t *tx) Paused() (bool, error) {
	return t.state.paused, nil
}

func (t *tx) FarmCounter() (uint64, error) {
	return t.state.farmCounter, nil
}

func (t *tx) Farm(id domain.FarmID) (*models.Farm, error) {
	farm, ok := t.state.farms[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &farm, nil
}

func (t *tx) Category(id domain.FarmID) (*models.Category, error) {
	category, ok := t.state.categories[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := cloneCategory(category)
	return &cp, nil
}

func (t *tx) Certification(id domain.FarmID) (*models.Certification, error) {
	cert, ok := t.state.certifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &cert, nil
}

func (t *tx) Status(id domain.FarmID) (*models.FarmStatus, error) {
	status, ok := t.state.statuses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &status, nil
}

func (t *tx) Collaborator(id domain.FarmID, actor domain.Actor) (*models.Collaborator, error) {
	collab, ok := t.state.collaborators[collabKey{farm: id, actor: actor}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := cloneCollaborator(collab)
	return &cp, nil
}

func (t *tx) Share(id domain.FarmID, participant domain.Actor) (*models.RevenueShare, error) {
	share, ok := t.state.shares[shareKey{farm: id, participant: participant}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &share, nil
}

func (t *tx) HistoryEntry(id domain.FarmID, entryID uint32) (*models.HistoryEntry, error) {
	entry, ok := t.state.history[historyKey{farm: id, entry: entryID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

func (t *tx) HistoryCount(id domain.FarmID) (uint32, error) {
	return t.state.historyCount[id], nil
}

func (t *tx) SetAdmin(actor domain.Actor) error {
	t.state.admin = actor
	return nil
}

func (t *tx) SetPaused(paused bool) error {
	t.state.paused = paused
	return nil
}

func (t *tx) NextFarmID() (domain.FarmID, error) {
	t.state.farmCounter++
	return domain.FarmID(t.state.farmCounter), nil
}

func (t *tx) PutFarm(farm *models.Farm) error {
	t.state.farms[farm.ID] = *farm
	return nil
}

func (t *tx) PutCategory(category *models.Category) error {
	t.state.categories[category.FarmID] = cloneCategory(*category)
	return nil
}

func (t *tx) PutCertification(cert *models.Certification) error {
	t.state.certifications[cert.FarmID] = *cert
	return nil
}

func (t *tx) PutStatus(status *models.FarmStatus) error {
	t.state.statuses[status.FarmID] = *status
	return nil
}

func (t *tx) InsertCollaborator(collab *models.Collaborator) error {
	key := collabKey{farm: collab.FarmID, actor: collab.Actor}
	if _, exists := t.state.collaborators[key]; exists {
		return sentinel.ErrConflict
	}
	t.state.collaborators[key] = cloneCollaborator(*collab)
	return nil
}

func (t *tx) PutShare(share *models.RevenueShare) error {
	t.state.shares[shareKey{farm: share.FarmID, participant: share.Participant}] = *share
	return nil
}

func (t *tx) AppendHistory(entry *models.HistoryEntry) (uint32, error) {
	count := t.state.historyCount[entry.FarmID]
	if count >= models.MaxHistoryEntries {
		return 0, sentinel.ErrLimitExceeded
	}
	entry.EntryID = count + 1
	t.state.history[historyKey{farm: entry.FarmID, entry: entry.EntryID}] = *entry
	t.state.historyCount[entry.FarmID] = entry.EntryID
	return entry.EntryID, nil
}
