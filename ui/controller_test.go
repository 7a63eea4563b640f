package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryapp"
	"pantryapp/pantry"
	"pantryapp/storage"
)

// countingInventory counts full fetches on top of a real adapter.
type countingInventory struct {
	*pantry.Adapter
	lists int
}

func (c *countingInventory) ListAll(ctx context.Context) ([]pantry.Item, error) {
	c.lists++
	return c.Adapter.ListAll(ctx)
}

type memoryActionLogger struct {
	actions []pantryapp.ActionLog
}

func (m *memoryActionLogger) LogAction(a pantryapp.ActionLog) error {
	m.actions = append(m.actions, a)
	return nil
}

func newTestController(t *testing.T, docs ...storage.Document) (*Controller, *storage.MemoryCollection, *countingInventory) {
	t.Helper()
	c := storage.NewMemoryCollection(docs...)
	inv := &countingInventory{Adapter: pantry.NewAdapter(c)}
	ctrl := NewController(inv, nil)
	require.NoError(t, ctrl.Mount(context.Background()))
	return ctrl, c, inv
}

func addItem(t *testing.T, ctrl *Controller, name string) {
	t.Helper()
	ctrl.OpenModal()
	ctrl.SetDraft(name)
	require.NoError(t, ctrl.SubmitAdd(context.Background()))
}

func TestMountLoadsList(t *testing.T) {
	ctrl, _, inv := newTestController(t, storage.Document{ID: "rice", Count: 2})
	assert.Equal(t, 1, inv.lists)
	assert.Equal(t, []pantry.Item{{Name: "rice", Count: 2}}, ctrl.Snapshot().Pantry)
}

func TestSubmitAdd(t *testing.T) {
	ctrl, _, inv := newTestController(t)

	addItem(t, ctrl, "Apple")
	s := ctrl.Snapshot()
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, s.Pantry)
	assert.False(t, s.ModalOpen)
	assert.Empty(t, s.ItemNameDraft)

	addItem(t, ctrl, "apple")
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 2}}, ctrl.Snapshot().Pantry)
	assert.Equal(t, 3, inv.lists)
}

func TestAdd(t *testing.T) {
	ctrl, c, inv := newTestController(t)
	ctx := context.Background()

	ctrl.OpenModal()
	ctrl.SetDraft("rice")
	require.NoError(t, ctrl.Add(ctx, "Apple"))
	s := ctrl.Snapshot()
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, s.Pantry, "add uses its own name, not the pending draft")
	assert.False(t, s.ModalOpen)
	assert.Empty(t, s.ItemNameDraft)

	require.NoError(t, ctrl.Add(ctx, " "))
	assert.Equal(t, 1, c.Writes)
	assert.Equal(t, 2, inv.lists)
}

func TestSubmitAddBlank(t *testing.T) {
	ctrl, c, inv := newTestController(t, storage.Document{ID: "apple", Count: 1})

	addItem(t, ctrl, "   ")
	s := ctrl.Snapshot()
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, s.Pantry)
	assert.False(t, s.ModalOpen)
	assert.Empty(t, s.ItemNameDraft)
	assert.Equal(t, 0, c.Writes)
	assert.Equal(t, 1, inv.lists, "no refresh after a blank add")
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		initial []storage.Document
		remove  string
		want    []pantry.Item
	}{
		{
			name:    "count one is deleted",
			initial: []storage.Document{{ID: "apple", Count: 1}},
			remove:  "apple",
			want:    []pantry.Item{},
		},
		{
			name:    "count two is decremented",
			initial: []storage.Document{{ID: "apple", Count: 2}},
			remove:  "apple",
			want:    []pantry.Item{{Name: "apple", Count: 1}},
		},
		{
			name:    "never added leaves list unchanged",
			initial: []storage.Document{{ID: "apple", Count: 2}},
			remove:  "flour",
			want:    []pantry.Item{{Name: "apple", Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, _, inv := newTestController(t, tt.initial...)
			require.NoError(t, ctrl.Remove(context.Background(), tt.remove))
			assert.Equal(t, tt.want, ctrl.Snapshot().Pantry)
			assert.Equal(t, 2, inv.lists, "remove always refreshes")
		})
	}
}

func TestSearch(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	addItem(t, ctrl, "apple")

	ctrl.SetSearchQuery("  Apple ")
	res := ctrl.Search()
	assert.True(t, res.Found)
	assert.Equal(t, &pantry.Item{Name: "apple", Count: 1}, res.Item)
	assert.Equal(t, &res, ctrl.Snapshot().SearchResult)

	ctrl.SetSearchQuery("flour")
	res = ctrl.Search()
	assert.False(t, res.Found)
	assert.Nil(t, res.Item)
	assert.Equal(t, "flour", res.Query)

	ctrl.ClearSearch()
	assert.Nil(t, ctrl.Snapshot().SearchResult)
}

func TestSearchReflectsLastRefreshOnly(t *testing.T) {
	ctrl, c, _ := newTestController(t)

	// Written behind the controller's back: not visible until the next refresh.
	require.NoError(t, c.Set(context.Background(), storage.Document{ID: "rice", Count: 1}))
	ctrl.SetSearchQuery("rice")
	assert.False(t, ctrl.Search().Found)

	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.True(t, ctrl.Search().Found)
}

func TestModalToggleKeepsDraft(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.OpenModal()
	ctrl.SetDraft("bread")
	ctrl.CloseModal()

	s := ctrl.Snapshot()
	assert.False(t, s.ModalOpen)
	assert.Equal(t, "bread", s.ItemNameDraft)
}

func TestStoreFailureLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	ctrl, c, _ := newTestController(t, storage.Document{ID: "apple", Count: 1})

	c.Fail(storage.ErrUnavailable)

	ctrl.OpenModal()
	ctrl.SetDraft("rice")
	assert.ErrorIs(t, ctrl.SubmitAdd(ctx), storage.ErrUnavailable)
	assert.ErrorIs(t, ctrl.Remove(ctx, "apple"), storage.ErrUnavailable)
	assert.ErrorIs(t, ctrl.Refresh(ctx), storage.ErrUnavailable)

	s := ctrl.Snapshot()
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, s.Pantry)
	assert.False(t, s.ModalOpen)
	assert.Empty(t, s.ItemNameDraft)
}

func TestActionsAreLogged(t *testing.T) {
	logger := &memoryActionLogger{}
	ctrl := NewController(pantry.NewAdapter(storage.NewMemoryCollection()), logger)
	ctx := context.Background()

	require.NoError(t, ctrl.Mount(ctx))
	ctrl.SetDraft("apple")
	require.NoError(t, ctrl.SubmitAdd(ctx))
	ctrl.SetSearchQuery("apple")
	ctrl.Search()

	var actions []string
	for _, a := range logger.actions {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{"mount", "set_draft", "add", "set_search_query", "search"}, actions)
	assert.Equal(t, 1, logger.actions[2].Items)
	assert.Equal(t, "apple", logger.actions[2].Input)
}
