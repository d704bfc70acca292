package mapview

import (
	"errors"
	"sync"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var ErrNotPlaceable = errors.New("item has no valid coordinates")

// Selection is the single open marker popup.
type Selection struct {
	mu      sync.Mutex
	current *types.ItineraryItem
}

// Select opens the popup for item, replacing any open one.
func (s *Selection) Select(item types.ItineraryItem) error {
	if !item.Placeable() {
		return ErrNotPlaceable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &item
	return nil
}

func (s *Selection) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *Selection) Current() (types.ItineraryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.ItineraryItem{}, false
	}
	return *s.current, true
}
