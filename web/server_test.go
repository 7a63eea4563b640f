package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryapp/pantry"
	"pantryapp/storage"
	"pantryapp/ui"
)

func newTestServer(t *testing.T, docs ...storage.Document) (*httptest.Server, *ui.Controller, *storage.MemoryCollection) {
	t.Helper()
	c := storage.NewMemoryCollection(docs...)
	ctrl := ui.NewController(pantry.NewAdapter(c), nil)
	require.NoError(t, ctrl.Mount(context.Background()))

	srv, err := New(ctrl)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, ctrl, c
}

// post submits a form without following the redirect.
func post(t *testing.T, ts *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(ts.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getPage(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAddAndRemoveFlow(t *testing.T) {
	ts, ctrl, _ := newTestServer(t)

	resp := post(t, ts, "/modal/open", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Contains(t, getPage(t, ts), "Add New Item")

	post(t, ts, "/items", url.Values{"name": {"  Apple "}})
	post(t, ts, "/items", url.Values{"name": {"apple"}})

	page := getPage(t, ts)
	assert.NotContains(t, page, "Add New Item", "modal closes after submit")
	assert.Contains(t, page, "<h3>Apple</h3>")
	assert.Contains(t, page, "Quantity: 2")
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 2}}, ctrl.Snapshot().Pantry)

	post(t, ts, "/items/remove", url.Values{"name": {"apple"}})
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, ctrl.Snapshot().Pantry)
	post(t, ts, "/items/remove", url.Values{"name": {"apple"}})
	assert.Empty(t, ctrl.Snapshot().Pantry)
	assert.NotContains(t, getPage(t, ts), "<h3>Apple</h3>")
}

func TestCloseModalKeepsDraft(t *testing.T) {
	ts, ctrl, _ := newTestServer(t)
	post(t, ts, "/modal/open", nil)
	ctrl.SetDraft("bread")
	post(t, ts, "/modal/close", nil)

	s := ctrl.Snapshot()
	assert.False(t, s.ModalOpen)
	assert.Equal(t, "bread", s.ItemNameDraft)
}

func TestSearchPanel(t *testing.T) {
	ts, _, _ := newTestServer(t, storage.Document{ID: "green beans", Count: 3})

	post(t, ts, "/search", url.Values{"q": {" Green Beans "}})
	page := getPage(t, ts)
	assert.Contains(t, page, `class="result found"`)
	assert.Contains(t, page, "<h3>Green beans</h3>")
	assert.Contains(t, page, "Quantity: 3")

	post(t, ts, "/search", url.Values{"q": {"flour"}})
	page = getPage(t, ts)
	assert.Contains(t, page, `class="result missing"`)
	assert.Contains(t, page, `The item "flour" is not present in the pantry.`)

	post(t, ts, "/search/clear", nil)
	assert.NotContains(t, getPage(t, ts), `class="result`)
}

func TestStoreFailureReturnsBadGateway(t *testing.T) {
	ts, ctrl, c := newTestServer(t, storage.Document{ID: "apple", Count: 1})
	c.Fail(storage.ErrUnavailable)

	resp := post(t, ts, "/items", url.Values{"name": {"rice"}})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = post(t, ts, "/items/remove", url.Values{"name": {"apple"}})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 1}}, ctrl.Snapshot().Pantry)
}

func TestItemsAPI(t *testing.T) {
	ts, _, _ := newTestServer(t, storage.Document{ID: "rice", Count: 1}, storage.Document{ID: "apple", Count: 2})

	resp, err := http.Get(ts.URL + "/api/items")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var items []pantry.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Equal(t, []pantry.Item{{Name: "apple", Count: 2}, {Name: "rice", Count: 1}}, items)
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"apple":       "Apple",
		"green beans": "Green beans",
		"élan":        "Élan",
		"":            "",
		"1kg flour":   "1kg flour",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
	assert.True(t, strings.HasPrefix(DisplayName("x"), "X"))
}

// slowInventory holds every add long enough for concurrent requests to queue.
type slowInventory struct {
	*pantry.Adapter
	delay time.Duration
}

func (s *slowInventory) AddOne(ctx context.Context, name string) error {
	time.Sleep(s.delay)
	return s.Adapter.AddOne(ctx, name)
}

func TestConcurrentAddsAllLand(t *testing.T) {
	inv := &slowInventory{Adapter: pantry.NewAdapter(storage.NewMemoryCollection()), delay: 20 * time.Millisecond}
	ctrl := ui.NewController(inv, nil)
	require.NoError(t, ctrl.Mount(context.Background()))
	srv, err := New(ctrl)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	statuses := make([]int, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.PostForm(ts.URL+"/items", url.Values{"name": {name}})
			if err != nil {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}()
	}
	wg.Wait()

	for i, code := range statuses {
		assert.Equal(t, http.StatusSeeOther, code, names[i])
	}
	want := make([]pantry.Item, 0, len(names))
	for _, name := range names {
		want = append(want, pantry.Item{Name: name, Count: 1})
	}
	assert.Equal(t, want, ctrl.Snapshot().Pantry)
}
