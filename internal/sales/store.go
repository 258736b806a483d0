package sales

import (
	pkgerrors "salesdash/pkg/errors"
)

// Store is the mutable base collection of records for one dashboard session.
// It is not safe for concurrent use; the session owner serializes access.
type Store struct {
	records []SaleRecord
	index   map[string]int
}

func NewStore(records []SaleRecord) *Store {
	s := &Store{}
	s.Replace(records)
	return s
}

// Replace swaps in a freshly loaded collection. Duplicate ids keep the first occurrence.
func (s *Store) Replace(records []SaleRecord) {
	s.records = make([]SaleRecord, 0, len(records))
	s.index = make(map[string]int, len(records))
	for _, r := range records {
		if _, dup := s.index[r.ID]; dup {
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r.Clone())
	}
}

// Snapshot returns a copy of every record in load order.
func (s *Store) Snapshot() []SaleRecord {
	return CloneAll(s.records)
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) ids() []string {
	ids := make([]string, len(s.records))
	for i, r := range s.records {
		ids[i] = r.ID
	}
	return ids
}

func (s *Store) Get(id string) (SaleRecord, error) {
	i, ok := s.index[id]
	if !ok {
		return SaleRecord{}, notFound(id)
	}
	return s.records[i].Clone(), nil
}

func (s *Store) UpdateNote(id, note string) (SaleRecord, error) {
	return s.mutate(id, func(r *SaleRecord) { r.Notes = note })
}

func (s *Store) ToggleHidden(id string) (SaleRecord, error) {
	return s.mutate(id, func(r *SaleRecord) { r.Hidden = !r.Hidden })
}

func (s *Store) ToggleHighlight(id string) (SaleRecord, error) {
	return s.mutate(id, func(r *SaleRecord) { r.Highlighted = !r.Highlighted })
}

func (s *Store) ToggleMark(id string) (SaleRecord, error) {
	return s.mutate(id, func(r *SaleRecord) { r.Marked = !r.Marked })
}

// SetHidden hides every listed record; unknown ids are skipped.
// It returns how many records matched.
func (s *Store) SetHidden(ids []string) int {
	return s.mutateMany(ids, func(r *SaleRecord) { r.Hidden = true })
}

// SetMarked marks every listed record; unknown ids are skipped.
func (s *Store) SetMarked(ids []string) int {
	return s.mutateMany(ids, func(r *SaleRecord) { r.Marked = true })
}

func (s *Store) mutate(id string, fn func(*SaleRecord)) (SaleRecord, error) {
	i, ok := s.index[id]
	if !ok {
		return SaleRecord{}, notFound(id)
	}
	fn(&s.records[i])
	return s.records[i].Clone(), nil
}

func (s *Store) mutateMany(ids []string, fn func(*SaleRecord)) int {
	n := 0
	for _, id := range ids {
		if i, ok := s.index[id]; ok {
			fn(&s.records[i])
			n++
		}
	}
	return n
}

func notFound(id string) error {
	return pkgerrors.ErrNotFound.
		WithMessage("sale not found").
		WithDetail("sale_id", id)
}
