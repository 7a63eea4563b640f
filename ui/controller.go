package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pantryapp"
	"pantryapp/pantry"
)

// Inventory is the persistence side the controller drives.
type Inventory interface {
	ListAll(ctx context.Context) ([]pantry.Item, error)
	AddOne(ctx context.Context, name string) error
	RemoveOne(ctx context.Context, name string) error
}

// Controller owns the page state and dispatches user intents. Dispatch is
// serialized, so handlers run one at a time like a single UI event loop.
type Controller struct {
	mu        sync.Mutex
	state     State
	inventory Inventory
	logger    pantryapp.ActionLogger
}

// NewController initializes a controller in the initial (empty) state. Call
// Mount to perform the first refresh.
func NewController(inv Inventory, logger pantryapp.ActionLogger) *Controller {
	if logger == nil {
		logger = pantryapp.NewNoOpActionLogger()
	}
	return &Controller{
		state:     Initial(),
		inventory: inv,
		logger:    logger,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Mount performs the initial refresh.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.refresh(ctx)
	c.logAction("mount", "", err)
	return err
}

// Refresh re-fetches the whole collection.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.refresh(ctx)
	c.logAction("refresh", "", err)
	return err
}

func (c *Controller) OpenModal() {
	c.dispatch("open_modal", "", OpenModal)
}

func (c *Controller) CloseModal() {
	c.dispatch("close_modal", "", CloseModal)
}

func (c *Controller) SetDraft(draft string) {
	c.dispatch("set_draft", draft, SetDraft(draft))
}

func (c *Controller) SetSearchQuery(q string) {
	c.dispatch("set_search_query", q, SetSearchQuery(q))
}

// SubmitAdd adds the current draft, clears it, closes the modal and refreshes.
// A blank draft is dropped without a store call or refresh.
func (c *Controller) SubmitAdd(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.submitAdd(ctx)
}

// Add sets the draft to name and submits it in one dispatch, so concurrent
// callers never see each other's draft.
func (c *Controller) Add(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = SetDraft(name)(c.state)
	return c.submitAdd(ctx)
}

func (c *Controller) submitAdd(ctx context.Context) error {
	draft := c.state.ItemNameDraft
	c.state = CloseModal(ResetDraft(c.state))

	if pantry.Normalize(draft) == "" {
		c.logAction("add", draft, nil)
		return nil
	}

	err := c.inventory.AddOne(ctx, draft)
	if err == nil {
		err = c.refresh(ctx)
	}
	c.logAction("add", draft, err)
	return err
}

// Remove takes one off name and refreshes, whether or not name was present.
func (c *Controller) Remove(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.inventory.RemoveOne(ctx, name)
	if err == nil {
		err = c.refresh(ctx)
	}
	c.logAction("remove", name, err)
	return err
}

// Search resolves the current query against the last refreshed list.
func (c *Controller) Search() pantry.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = ApplySearch(c.state)
	c.logAction("search", c.state.SearchQuery, nil)
	return *c.state.SearchResult
}

func (c *Controller) ClearSearch() {
	c.dispatch("clear_search", "", ClearSearch)
}

func (c *Controller) dispatch(action, input string, fn func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = fn(c.state)
	c.logAction(action, input, nil)
}

// refresh replaces the list wholesale. On error the state is left untouched.
func (c *Controller) refresh(ctx context.Context) error {
	items, err := c.inventory.ListAll(ctx)
	if err != nil {
		return err
	}
	c.state = ReplacePantry(items)(c.state)
	return nil
}

func (c *Controller) logAction(action, input string, err error) {
	entry := pantryapp.ActionLog{
		Action:    action,
		Timestamp: time.Now(),
		Input:     input,
		Items:     len(c.state.Pantry),
	}
	if err != nil {
		entry.Error = err.Error()
		slog.Error("ACTION: Failed", "action", action, "input", input, "error", err)
	} else {
		slog.Debug("ACTION: Dispatched", "action", action, "input", input, "items", entry.Items)
	}
	if lerr := c.logger.LogAction(entry); lerr != nil {
		slog.Error("Failed to log action", "error", lerr, "action", action)
	}
}
