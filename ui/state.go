package ui

import (
	"slices"

	"pantryapp/pantry"
)

// State is everything the page renders. Values are replaced, never shared:
// transitions return a new State.
type State struct {
	Pantry        []pantry.Item        `json:"pantry"`
	ModalOpen     bool                 `json:"modal_open"`
	ItemNameDraft string               `json:"item_name_draft"`
	SearchQuery   string               `json:"search_query"`
	SearchResult  *pantry.SearchResult `json:"search_result,omitempty"`
}

// Initial is the state before the first refresh.
func Initial() State {
	return State{Pantry: []pantry.Item{}}
}

func OpenModal(s State) State {
	s.ModalOpen = true
	return s
}

// CloseModal hides the modal; the draft is kept.
func CloseModal(s State) State {
	s.ModalOpen = false
	return s
}

func SetDraft(draft string) func(State) State {
	return func(s State) State {
		s.ItemNameDraft = draft
		return s
	}
}

func ResetDraft(s State) State {
	s.ItemNameDraft = ""
	return s
}

func SetSearchQuery(q string) func(State) State {
	return func(s State) State {
		s.SearchQuery = q
		return s
	}
}

// ApplySearch looks the current query up in the current snapshot.
func ApplySearch(s State) State {
	res := pantry.Search(s.Pantry, s.SearchQuery)
	s.SearchResult = &res
	return s
}

func ClearSearch(s State) State {
	s.SearchResult = nil
	return s
}

func ReplacePantry(items []pantry.Item) func(State) State {
	return func(s State) State {
		s.Pantry = slices.Clone(items)
		if s.Pantry == nil {
			s.Pantry = []pantry.Item{}
		}
		return s
	}
}

// clone copies the slices and pointers so callers cannot mutate controller state.
func (s State) clone() State {
	s.Pantry = slices.Clone(s.Pantry)
	if s.Pantry == nil {
		s.Pantry = []pantry.Item{}
	}
	if s.SearchResult != nil {
		res := *s.SearchResult
		if res.Item != nil {
			it := *res.Item
			res.Item = &it
		}
		s.SearchResult = &res
	}
	return s
}
