package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/complyviz/complyviz/pkg/cache"
	"github.com/complyviz/complyviz/pkg/pipeline"
	"github.com/complyviz/complyviz/pkg/store"
)

func testServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := st.CreateGroup(ctx, store.CountryGroup{
		ID: "eu", Name: "EU", Countries: []string{"France", "Germany", "Italy"},
	}); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	if _, err := st.CreateRule(ctx, store.Rule{
		ID: "r1", Name: "Restrict transfer", Outcome: "prohibition",
		OriginGroupIDs: []string{"eu"},
	}); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(st, fc, nil, logger)
	srv := httptest.NewServer(NewServer(runner, logger).Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	resp := getJSON(t, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetGraph(t *testing.T) {
	srv, _ := testServer(t)

	var body graphResponse
	resp := getJSON(t, srv.URL+"/api/graph", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(body.Document.Nodes) != 2 {
		t.Errorf("graph has %d nodes, want 2", len(body.Document.Nodes))
	}
	if body.GraphHash == "" {
		t.Error("missing graph hash")
	}
}

func TestPostLayout(t *testing.T) {
	srv, _ := testServer(t)

	resp := postJSON(t, srv.URL+"/api/layout", pipeline.Options{
		Mode:     pipeline.ModeColumns,
		Expanded: []string{"eu"},
		Formats:  []string{pipeline.FormatJSON},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Layout.Nodes) != 5 || len(body.Layout.Edges) != 6 {
		t.Errorf("expanded layout = %d nodes / %d edges, want 5/6",
			len(body.Layout.Nodes), len(body.Layout.Edges))
	}
	if len(body.Artifacts["json"]) == 0 {
		t.Error("missing json artifact")
	}
}

func TestPostLayoutInvalidMode(t *testing.T) {
	srv, _ := testServer(t)

	resp := postJSON(t, srv.URL+"/api/layout", pipeline.Options{Mode: "spiral"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", body.Error.Code)
	}
}

func TestCreateRuleInvalidatesGraph(t *testing.T) {
	srv, _ := testServer(t)

	// Warm the graph cache.
	getJSON(t, srv.URL+"/api/graph", nil)

	resp := postJSON(t, srv.URL+"/api/rules/", store.Rule{
		Name: "Allow transfer", Outcome: "permission",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created store.Rule
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Error("created rule has no assigned ID")
	}

	// The cached graph was invalidated, so a plain refetch sees the new rule.
	var body graphResponse
	getJSON(t, srv.URL+"/api/graph", &body)
	if len(body.Document.Nodes) != 3 {
		t.Errorf("graph has %d nodes after create, want 3", len(body.Document.Nodes))
	}
}

func TestCreateRuleInvalidOutcome(t *testing.T) {
	srv, _ := testServer(t)

	resp := postJSON(t, srv.URL+"/api/rules/", store.Rule{Name: "Bad", Outcome: "maybe"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteRule(t *testing.T) {
	srv, _ := testServer(t)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/rules/r1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/rules/r1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("second DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for missing rule", resp.StatusCode)
	}
}

func TestUpdateGroup(t *testing.T) {
	srv, _ := testServer(t)

	data, _ := json.Marshal(store.CountryGroup{
		Name: "EU", Countries: []string{"France", "Germany", "Italy", "Spain"},
	})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/groups/eu", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body graphResponse
	getJSON(t, srv.URL+"/api/graph", &body)
	group, ok := body.Document.Node("eu")
	if !ok {
		t.Fatal("group missing after update")
	}
	if len(group.Countries) != 4 {
		t.Errorf("group has %d countries after update, want 4", len(group.Countries))
	}
}

func TestActions(t *testing.T) {
	srv, _ := testServer(t)

	var body struct {
		ID      string `json:"id"`
		Actions []struct {
			Label string `json:"label"`
			Op    string `json:"op"`
		} `json:"actions"`
	}
	resp := getJSON(t, srv.URL+"/api/actions/r1", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(body.Actions) != 2 {
		t.Errorf("rule has %d actions, want 2", len(body.Actions))
	}

	resp = getJSON(t, srv.URL+"/api/actions/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown node", resp.StatusCode)
	}
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(EventGraphChanged)
	select {
	case got := <-ch:
		if got != EventGraphChanged {
			t.Errorf("event = %q, want %q", got, EventGraphChanged)
		}
	default:
		t.Fatal("no event delivered")
	}

	// A full buffer drops events instead of blocking.
	for i := 0; i < 20; i++ {
		b.Publish(EventGraphChanged)
	}
}

func TestEventsStream(t *testing.T) {
	srv, _ := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	delReq, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/groups/eu", nil)
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("DELETE group: %v", err)
	}
	delResp.Body.Close()

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "event: graph_changed") {
		t.Errorf("stream payload = %q, want graph_changed event", string(buf[:n]))
	}
}
