package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/exacode/docsink/converter"
	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// NotCapped is returned by CappedSize when the collection is not capped or has no metadata.
const NotCapped int64 = -1

// LogStore appends log events to a single collection and retrieves them.
// It is safe for concurrent use when the underlying collection is.
type LogStore struct {
	coll     domain.Collection
	database domain.Database
	codec    *converter.EventCodec
}

// New returns a LogStore over coll. database is used for administrative commands and
// metadata of coll.
func New(coll domain.Collection, database domain.Database, codec *converter.EventCodec) *LogStore {
	return &LogStore{
		coll:     coll,
		database: database,
		codec:    codec,
	}
}

// Collection returns the name of the collection backing the store.
func (s *LogStore) Collection() string {
	return s.coll.Name()
}

// Append encodes event and inserts it as one document.
func (s *LogStore) Append(event domain.LogEvent) error {
	doc, err := s.codec.Encode(event)
	if err != nil {
		return fmt.Errorf("encoding event : %w", err)
	}
	if err := s.coll.Insert(doc); err != nil {
		return fmt.Errorf("appending event to %s : %w", s.coll.Name(), err)
	}
	return nil
}

// Find returns every stored event in the driver's default order.
func (s *LogStore) Find() ([]domain.LogEvent, error) {
	return s.find(domain.Query{})
}

// FindOrdered returns every stored event, oldest first when naturalOrder is true and newest
// first otherwise.
func (s *LogStore) FindOrdered(naturalOrder bool) ([]domain.LogEvent, error) {
	return s.find(domain.Query{Sort: sortOrder(naturalOrder)})
}

// FindLimit returns at most size events in the requested order. A non-positive size returns
// no events.
func (s *LogStore) FindLimit(size int, naturalOrder bool) ([]domain.LogEvent, error) {
	return s.FindPage(0, size, naturalOrder)
}

// FindPage skips offset events in the requested order and returns at most the next size.
func (s *LogStore) FindPage(offset, size int, naturalOrder bool) ([]domain.LogEvent, error) {
	if size <= 0 {
		return []domain.LogEvent{}, nil
	}
	return s.find(domain.Query{Sort: sortOrder(naturalOrder), Skip: max(offset, 0), Limit: size})
}

// FindByTimestamp returns the events stored with exactly the given timestamp, compared at
// millisecond precision, in the requested order.
func (s *LogStore) FindByTimestamp(ts time.Time, naturalOrder bool) ([]domain.LogEvent, error) {
	filter := document.NewMap().Set(converter.TimeStampField, document.Date(ts))
	return s.find(domain.Query{Filter: filter, Sort: sortOrder(naturalOrder)})
}

// Count returns the number of stored events.
func (s *LogStore) Count() (int64, error) {
	n, err := s.coll.Count()
	if err != nil {
		return 0, fmt.Errorf("counting events in %s : %w", s.coll.Name(), err)
	}
	return n, nil
}

// Clear removes every stored event. A capped collection is dropped and recreated with the
// same size, so the collection is briefly missing while Clear runs.
func (s *LogStore) Clear() error {
	capped, err := s.coll.IsCapped()
	if err != nil {
		return fmt.Errorf("clearing %s : %w", s.coll.Name(), err)
	}

	if !capped {
		if err := s.coll.DeleteAll(); err != nil {
			return fmt.Errorf("clearing %s : %w", s.coll.Name(), err)
		}
		return nil
	}

	size, err := s.CappedSize()
	if err != nil {
		return fmt.Errorf("clearing %s : %w", s.coll.Name(), err)
	}
	if err := s.coll.Drop(); err != nil {
		return fmt.Errorf("dropping %s : %w", s.coll.Name(), err)
	}
	if size == NotCapped {
		return nil
	}
	if err := s.EnsureCapped(size); err != nil {
		return fmt.Errorf("recreating %s : %w", s.coll.Name(), err)
	}
	return nil
}

// EnsureCapped converts the collection to a capped collection of size bytes unless it is
// already capped at exactly that size.
func (s *LogStore) EnsureCapped(size int64) error {
	current, err := s.CappedSize()
	if err != nil {
		return err
	}
	if current == size {
		return nil
	}

	cmd := document.NewMap().
		Set(domain.CmdConvertToCapped, document.String(s.coll.Name())).
		Set("size", document.Int(size))
	if _, err := s.database.RunCommand(cmd); err != nil {
		return fmt.Errorf("capping %s at %d bytes : %w", s.coll.Name(), size, err)
	}
	return nil
}

// CappedSize returns the capped size of the collection in bytes, or NotCapped.
func (s *LogStore) CappedSize() (int64, error) {
	meta, err := s.database.CollectionMetadata(s.coll.Name())
	if errors.Is(err, domain.ErrNotFound) {
		return NotCapped, nil
	}
	if err != nil {
		return NotCapped, fmt.Errorf("reading metadata of %s : %w", s.coll.Name(), err)
	}

	options, _ := meta.Get("options")
	opts, ok := options.AsMap()
	if !ok {
		return NotCapped, nil
	}
	capped, _ := opts.Get("capped")
	if isCapped, _ := capped.AsBool(); !isCapped {
		return NotCapped, nil
	}
	size, _ := opts.Get("size")
	n, ok := size.AsInt()
	if !ok {
		return NotCapped, nil
	}
	return n, nil
}

func (s *LogStore) find(query domain.Query) ([]domain.LogEvent, error) {
	cur, err := s.coll.Find(query)
	if err != nil {
		return nil, fmt.Errorf("finding events in %s : %w", s.coll.Name(), err)
	}
	defer cur.Close()

	events := []domain.LogEvent{}
	for cur.Next() {
		event, err := s.codec.Decode(cur.Document())
		if err != nil {
			return nil, fmt.Errorf("decoding event %d of %s : %w", len(events), s.coll.Name(), err)
		}
		events = append(events, event)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("reading events from %s : %w", s.coll.Name(), err)
	}
	return events, nil
}

func sortOrder(naturalOrder bool) domain.SortOrder {
	if naturalOrder {
		return domain.SortNatural
	}
	return domain.SortReverse
}
