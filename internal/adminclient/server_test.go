package adminclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go-studioadmin/internal/domain/model"
)

// fakeGroups serves /api/v1/admin/groups from memory.
type fakeGroups struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.Group
	posts  int

	// failWith, when set, answers every mutation with this status and message.
	failWith int
	failMsg  string
	// beforePatch runs before a PATCH is answered.
	beforePatch func(n int)
	patches     int
}

func newFakeGroups(rows ...model.Group) *fakeGroups {
	f := &fakeGroups{nextID: 100, rows: rows}
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGroups) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, AdminPrefix+"groups")
	if r.Method != http.MethodGet && f.failWith != 0 {
		writeJSON(w, f.failWith, map[string]any{"ok": false, "code": -995, "error": f.failMsg})
		return
	}
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			f.mu.Lock()
			rows := append([]model.Group(nil), f.rows...)
			f.mu.Unlock()
			writeJSON(w, 200, map[string]any{"ok": true, "items": rows})
		case http.MethodPost:
			var g model.Group
			_ = json.NewDecoder(r.Body).Decode(&g)
			f.mu.Lock()
			f.posts++
			f.nextID++
			g.ID = f.nextID
			f.rows = append(f.rows, g)
			f.mu.Unlock()
			writeJSON(w, 200, map[string]any{"ok": true, "item": g})
		}
		return
	}
	id, _ := strconv.ParseInt(strings.TrimPrefix(rest, "/"), 10, 64)
	f.mu.Lock()
	idx := -1
	for i := range f.rows {
		if f.rows[i].ID == id {
			idx = i
		}
	}
	f.mu.Unlock()
	if idx < 0 {
		writeJSON(w, 404, map[string]any{"ok": false, "code": -8, "error": "not found"})
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var g model.Group
		_ = json.NewDecoder(r.Body).Decode(&g)
		f.mu.Lock()
		f.patches++
		n := f.patches
		f.mu.Unlock()
		if f.beforePatch != nil {
			f.beforePatch(n)
		}
		g.ID = id
		f.mu.Lock()
		f.rows[idx] = g
		f.mu.Unlock()
		writeJSON(w, 200, map[string]any{"ok": true, "item": g})
	case http.MethodDelete:
		f.mu.Lock()
		f.rows = append(f.rows[:idx], f.rows[idx+1:]...)
		f.mu.Unlock()
		writeJSON(w, 200, map[string]any{"ok": true})
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", srv.Client())
}

func group(id int64, name string) model.Group {
	return model.Group{Base: model.Base{ID: id}, Name: name, IsActive: true}
}
