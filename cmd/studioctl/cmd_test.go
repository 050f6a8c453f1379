package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-studioadmin/internal/adminclient"
	"go-studioadmin/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliTest struct {
	name       string
	args       []string
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func newStudioServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/v1/admin/groups", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			write(w, 200, map[string]any{"ok": true, "items": []map[string]any{
				{"id": 1, "name": "Hip-Hop Kids"},
				{"id": 2, "name": "Contemporary Adults"},
			}})
		case http.MethodPost:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["id"] = 3
			write(w, 201, map[string]any{"ok": true, "item": body})
		}
	})
	mux.HandleFunc("/api/v1/admin/groups/2", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, map[string]any{"ok": true})
	})
	mux.HandleFunc("/api/v1/admin/groups/9", func(w http.ResponseWriter, r *http.Request) {
		write(w, 404, map[string]any{"ok": false, "code": -8, "error": "Запись не найдена"})
	})
	mux.HandleFunc("/api/v1/admin/applications/auto-assign-all", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, map[string]any{"ok": true, "assigned": 4})
	})
	mux.HandleFunc("/api/v1/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, map[string]any{"ok": true, "items": []map[string]any{
			{"key": "applications_new", "label": "Новые заявки", "value": 5},
		}})
	})
	mux.HandleFunc("/api/v1/admin/support/conversations", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, map[string]any{"ok": true, "items": []map[string]any{{"id": 7, "subject": "Оплата", "status": "open"}}})
	})
	mux.HandleFunc("/api/v1/admin/realtime", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		f, _ := realtime.NewFrame(realtime.SupportChannel, realtime.SupportMessageEvent, realtime.SupportMessage{
			Conversation: realtime.ConversationRef{ID: 7},
			Message:      realtime.MessagePayload{ID: 70, Body: "Здравствуйте", SenderType: "user"},
		})
		_ = conn.WriteJSON(f)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCommandLine_Run(t *testing.T) {
	srv := newStudioServer(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"dance"}, wantErr: errHelp},
		{name: "list without path", args: []string{"list"}, wantErr: errHelp},
		{name: "list", args: []string{"list", "-path", "groups", "-fields", "name"}, wantOut: []string{"Hip-Hop Kids", "Contemporary Adults"}},
		{name: "list filtered", args: []string{"list", "-path", "groups", "-q", "hip", "-fields", "name"}, wantOut: []string{"Hip-Hop Kids"}},
		{name: "create", args: []string{"create", "-path", "groups", "-data", `{"name":"Jazz"}`}, wantOut: []string{`"id":3`, `"name":"Jazz"`}},
		{name: "create invalid json", args: []string{"create", "-path", "groups", "-data", "{"}, wantErrStr: "invalid -data"},
		{name: "delete", args: []string{"delete", "-path", "groups", "-id", "2"}, wantOut: []string{"deleted groups/2"}},
		{name: "delete missing row", args: []string{"delete", "-path", "groups", "-id", "9"}, wantErrStr: "Запись не найдена"},
		{name: "delete without id", args: []string{"delete", "-path", "groups"}, wantErr: errHelp},
		{name: "assign all", args: []string{"assign-all"}, wantOut: []string{"assigned: 4"}},
		{name: "stats", args: []string{"stats"}, wantOut: []string{"applications_new", "Новые заявки"}},
		{name: "tail support", args: []string{"tail-support", "-for", "300ms"}, wantOut: []string{"#7 [user] Здравствуйте"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cli := commandLine{
				client: adminclient.New(srv.URL, "token", srv.Client()),
				dialer: websocket.DefaultDialer,
				out:    &out,
			}
			args := append([]string{"studioctl"}, tt.args...)
			err := cli.run(args)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestCommandLine_ListFilterExcludes(t *testing.T) {
	srv := newStudioServer(t)
	var out bytes.Buffer
	cli := commandLine{client: adminclient.New(srv.URL, "", srv.Client()), out: &out}

	require.NoError(t, cli.run([]string{"studioctl", "list", "-path", "groups", "-q", "ADULT", "-fields", "name"}))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.NotContains(t, out.String(), "Hip-Hop")
}
