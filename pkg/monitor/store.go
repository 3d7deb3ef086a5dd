package monitor

import (
	"errors"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

var (
	ErrDuplicateItem = errors.New("item already exists")
	ErrUnknownItem   = errors.New("item not found")
)

// ItemStore is the append/update log of one call's conversation items.
// Items keep arrival order; nothing is ever removed except by Reset.
// An ItemStore is not safe for concurrent use.
type ItemStore struct {
	items []model.Item
	index map[string]int
}

func NewItemStore() *ItemStore {
	return &ItemStore{index: make(map[string]int)}
}

// Append adds item at the end of the log.
func (s *ItemStore) Append(item model.Item) error {
	if item.ID == "" {
		return errors.New("item id is empty")
	}
	if _, ok := s.index[item.ID]; ok {
		return ErrDuplicateItem
	}

	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item.Clone())
	return nil
}

// UpdateByID merges patch into the item with the given id in place.
// The id and timestamp of an item never change. It reports false,
// leaving the store untouched, when no such item exists.
func (s *ItemStore) UpdateByID(id string, patch func(*model.Item)) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}

	item := &s.items[i]
	keepID, keepTimestamp := item.ID, item.Timestamp
	patch(item)
	item.ID, item.Timestamp = keepID, keepTimestamp
	return true
}

func (s *ItemStore) Get(id string) (model.Item, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Item{}, false
	}
	return s.items[i].Clone(), true
}

// FindFunctionCall returns the function_call item correlated with callID.
func (s *ItemStore) FindFunctionCall(callID string) (model.Item, bool) {
	if callID == "" {
		return model.Item{}, false
	}
	for _, item := range s.items {
		if item.Type == model.ItemTypeFunctionCall && item.CallID == callID {
			return item.Clone(), true
		}
	}
	return model.Item{}, false
}

func (s *ItemStore) Len() int {
	return len(s.items)
}

// Snapshot copies the items in insertion order.
func (s *ItemStore) Snapshot() []model.Item {
	out := make([]model.Item, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Reset drops every item. Only a new call start does this.
func (s *ItemStore) Reset() {
	s.items = nil
	s.index = make(map[string]int)
}
