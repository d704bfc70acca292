package itinerary

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Snapshot is an immutable view of the itinerary tree and the active selection.
type Snapshot struct {
	Itineraries       []types.Itinerary `json:"itineraries"`
	ActiveItineraryID string            `json:"active_itinerary_id,omitempty"`
	ActiveDayID       string            `json:"active_day_id,omitempty"`
}

// Placement says where a committed item landed.
type Placement struct {
	ItineraryID string `json:"itinerary_id"`
	DayID       string `json:"day_id"`
	ItemID      string `json:"item_id"`
	Created     bool   `json:"created"`
}

// Store owns the itinerary tree of one workspace. Every mutation works on a
// deep copy that replaces the current tree only once it is valid, so readers
// never see a partial update.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewStore() *Store {
	return &Store{snap: &Snapshot{Itineraries: []types.Itinerary{}}}
}

// Snapshot returns a copy of the current tree.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Itinerary returns a copy of one itinerary.
func (s *Store) Itinerary(id string) (types.Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.snap.index(id)
	if idx < 0 {
		return types.Itinerary{}, fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
	}
	return cloneItinerary(s.snap.Itineraries[idx]), nil
}

// ActiveItinerary returns the active itinerary, if any.
func (s *Store) ActiveItinerary() (types.Itinerary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.snap.index(s.snap.ActiveItineraryID)
	if idx < 0 {
		return types.Itinerary{}, false
	}
	return cloneItinerary(s.snap.Itineraries[idx]), true
}

// CreateItinerary appends "New Itinerary {n+1}" with a single "Day 1" and
// makes it active.
func (s *Store) CreateItinerary() types.Itinerary {
	var created types.Itinerary
	_ = s.update(func(next *Snapshot) error {
		created = newItinerary(fmt.Sprintf("New Itinerary %d", len(next.Itineraries)+1))
		next.Itineraries = append(next.Itineraries, created)
		next.ActiveItineraryID = created.ID
		next.ActiveDayID = created.Days[0].ID
		return nil
	})
	return cloneItinerary(created)
}

// AddDay appends "Day {n+1}" to one itinerary.
func (s *Store) AddDay(itineraryID string) (types.ItineraryDay, error) {
	var day types.ItineraryDay
	err := s.update(func(next *Snapshot) error {
		idx := next.index(itineraryID)
		if idx < 0 {
			return fmt.Errorf("itinerary %s: %w", itineraryID, types.ErrNotFound)
		}
		it := &next.Itineraries[idx]
		day = newDay(fmt.Sprintf("Day %d", len(it.Days)+1))
		it.Days = append(it.Days, day)
		return nil
	})
	return day, err
}

// DeleteItinerary removes an itinerary. When it was active, the first
// remaining itinerary and its first day become active.
func (s *Store) DeleteItinerary(id string) error {
	return s.update(func(next *Snapshot) error {
		idx := next.index(id)
		if idx < 0 {
			return fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
		}
		next.Itineraries = append(next.Itineraries[:idx], next.Itineraries[idx+1:]...)
		if next.ActiveItineraryID != id {
			return nil
		}
		next.ActiveItineraryID, next.ActiveDayID = "", ""
		if len(next.Itineraries) > 0 {
			first := next.Itineraries[0]
			next.ActiveItineraryID = first.ID
			next.ActiveDayID = first.Days[0].ID
		}
		return nil
	})
}

// DeleteItem removes one item from one day. Unknown ids leave the store untouched.
func (s *Store) DeleteItem(itineraryID, dayID, itemID string) {
	_ = s.update(func(next *Snapshot) error {
		day := next.day(itineraryID, dayID)
		if day == nil {
			return errNoChange
		}
		for i, item := range day.Items {
			if item.ID == itemID {
				day.Items = append(day.Items[:i], day.Items[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

// SetActive selects an itinerary and one of its days. An empty dayID selects
// the first day.
func (s *Store) SetActive(itineraryID, dayID string) error {
	return s.update(func(next *Snapshot) error {
		idx := next.index(itineraryID)
		if idx < 0 {
			return fmt.Errorf("itinerary %s: %w", itineraryID, types.ErrNotFound)
		}
		it := next.Itineraries[idx]
		if dayID == "" {
			dayID = it.Days[0].ID
		} else if next.day(itineraryID, dayID) == nil {
			return fmt.Errorf("day %s: %w", dayID, types.ErrNotFound)
		}
		next.ActiveItineraryID = it.ID
		next.ActiveDayID = dayID
		return nil
	})
}

// AppendToActive adds an item to the active day. Without an active
// itinerary, a "New Itinerary" with "Day 1" holding the item is created and
// selected.
func (s *Store) AppendToActive(item types.ItineraryItem) Placement {
	var p Placement
	_ = s.update(func(next *Snapshot) error {
		idx := next.index(next.ActiveItineraryID)
		if idx < 0 {
			it := newItinerary("New Itinerary")
			it.Days[0].Items = []types.ItineraryItem{item}
			next.Itineraries = append(next.Itineraries, it)
			next.ActiveItineraryID = it.ID
			next.ActiveDayID = it.Days[0].ID
			p = Placement{ItineraryID: it.ID, DayID: it.Days[0].ID, ItemID: item.ID, Created: true}
			return nil
		}

		it := &next.Itineraries[idx]
		day := next.day(it.ID, next.ActiveDayID)
		if day == nil {
			day = &it.Days[0]
			next.ActiveDayID = day.ID
		}
		item.ID = uniqueItemID(day.Items, item.ID)
		day.Items = append(day.Items, item)
		p = Placement{ItineraryID: it.ID, DayID: day.ID, ItemID: item.ID}
		return nil
	})
	return p
}

// Restore adds a copy of a saved itinerary under fresh ids and selects it.
func (s *Store) Restore(saved types.Itinerary) types.Itinerary {
	restored := cloneItinerary(saved)
	restored.ID = newID("itinerary")
	for i := range restored.Days {
		restored.Days[i].ID = newID("day")
	}
	if len(restored.Days) == 0 {
		restored.Days = []types.ItineraryDay{newDay("Day 1")}
	}
	_ = s.update(func(next *Snapshot) error {
		next.Itineraries = append(next.Itineraries, restored)
		next.ActiveItineraryID = restored.ID
		next.ActiveDayID = restored.Days[0].ID
		return nil
	})
	return cloneItinerary(restored)
}

// ActiveItems lists the items of the active itinerary, or only those of the
// active day when dayOnly is set.
func (s *Snapshot) ActiveItems(dayOnly bool) []types.ItineraryItem {
	idx := s.index(s.ActiveItineraryID)
	if idx < 0 {
		return nil
	}
	var items []types.ItineraryItem
	for _, day := range s.Itineraries[idx].Days {
		if dayOnly && day.ID != s.ActiveDayID {
			continue
		}
		items = append(items, day.Items...)
	}
	return items
}

var errNoChange = errors.New("no change")

func (s *Store) update(fn func(next *Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := next.validate(); err != nil {
		return err
	}
	s.snap = &next
	return nil
}

func (s *Snapshot) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Itineraries {
		if s.Itineraries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Snapshot) day(itineraryID, dayID string) *types.ItineraryDay {
	idx := s.index(itineraryID)
	if idx < 0 || dayID == "" {
		return nil
	}
	days := s.Itineraries[idx].Days
	for i := range days {
		if days[i].ID == dayID {
			return &days[i]
		}
	}
	return nil
}

func (s *Snapshot) validate() error {
	for _, it := range s.Itineraries {
		if len(it.Days) == 0 {
			return fmt.Errorf("itinerary %s has no days", it.ID)
		}
	}
	if s.ActiveItineraryID != "" && s.index(s.ActiveItineraryID) < 0 {
		return fmt.Errorf("active itinerary %s does not exist", s.ActiveItineraryID)
	}
	return nil
}

func (s *Snapshot) clone() Snapshot {
	out := Snapshot{
		Itineraries:       make([]types.Itinerary, len(s.Itineraries)),
		ActiveItineraryID: s.ActiveItineraryID,
		ActiveDayID:       s.ActiveDayID,
	}
	for i, it := range s.Itineraries {
		out.Itineraries[i] = cloneItinerary(it)
	}
	return out
}

func cloneItinerary(it types.Itinerary) types.Itinerary {
	out := types.Itinerary{ID: it.ID, Title: it.Title, Days: make([]types.ItineraryDay, len(it.Days))}
	for i, d := range it.Days {
		items := make([]types.ItineraryItem, len(d.Items))
		for j, item := range d.Items {
			if item.Coordinates != nil {
				c := *item.Coordinates
				item.Coordinates = &c
			}
			items[j] = item
		}
		out.Days[i] = types.ItineraryDay{ID: d.ID, Title: d.Title, Items: items}
	}
	return out
}

func newItinerary(title string) types.Itinerary {
	return types.Itinerary{
		ID:    newID("itinerary"),
		Title: title,
		Days:  []types.ItineraryDay{newDay("Day 1")},
	}
}

func newDay(title string) types.ItineraryDay {
	return types.ItineraryDay{ID: newID("day"), Title: title, Items: []types.ItineraryItem{}}
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func uniqueItemID(items []types.ItineraryItem, id string) string {
	taken := make(map[string]bool, len(items))
	for _, it := range items {
		taken[it.ID] = true
	}
	if !taken[id] {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
