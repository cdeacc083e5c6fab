package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/superchase/centcom/pkg/models"
)

// newTestAirtable creates an Airtable store pointed at a test server.
func newTestAirtable(t *testing.T, handler http.Handler) *Airtable {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	at, err := NewAirtable(AirtableConfig{
		Token:      "test-token",
		BaseID:     "appTEST",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewAirtable failed: %v", err)
	}
	return at
}

func TestAirtableListQueued(t *testing.T) {
	var gotFormula, gotAuth string
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{"id": "rec1", "fields": map[string]any{
					"task_id": "task_alpha", "status": "queued", "priority": "P1",
					"created_date": "2025-06-01T10:00:00Z",
				}},
				{"id": "rec2", "fields": map[string]any{
					"task_id": "task_beta", "status": "queued",
					"routing_payload": `{"goal":"x"}`,
				}},
			},
		})
	}))

	items, err := at.ListQueued(context.Background())
	if err != nil {
		t.Fatalf("ListQueued failed: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotFormula != `{status} = "queued"` {
		t.Errorf("filterByFormula = %q", gotFormula)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "rec1" || items[0].TaskID != "task_alpha" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[0].Priority != models.PriorityP1 {
		t.Errorf("items[0].Priority = %q, want P1", items[0].Priority)
	}
	if items[1].RoutingPayload != `{"goal":"x"}` {
		t.Errorf("items[1].RoutingPayload = %q", items[1].RoutingPayload)
	}
}

func TestAirtableListQueued_Pagination(t *testing.T) {
	calls := 0
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("offset") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec1", "fields": map[string]any{"status": "queued"}}},
				"offset":  "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{{"id": "rec2", "fields": map[string]any{"status": "queued"}}},
		})
	}))

	items, err := at.ListQueued(context.Background())
	if err != nil {
		t.Fatalf("ListQueued failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d requests, want 2", calls)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestAirtableUpdateFields_UnknownField(t *testing.T) {
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "UNKNOWN_FIELD_NAME",
				"message": `Unknown field name: "cost_actual"`,
			},
		})
	}))

	err := at.UpdateFields(context.Background(), "rec1", map[string]any{"cost_actual": 0.05})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("error = %v, want ErrUnknownField", err)
	}
}

func TestAirtableUpdateFields_OtherError(t *testing.T) {
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "INVALID_VALUE_FOR_COLUMN", "message": "bad value"},
		})
	}))

	err := at.UpdateFields(context.Background(), "rec1", map[string]any{"status": "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUnknownField) {
		t.Errorf("error %v must not classify as ErrUnknownField", err)
	}
}

func TestAirtableAppendExecution(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": "recNew"})
	}))

	err := at.AppendExecution(context.Background(), &models.ExecutionRecord{
		ExecutionID:      "exec_1",
		TaskRef:          "rec1",
		AgentUsed:        "claude",
		TokensConsumed:   150,
		CostUSD:          0.05,
		ConfidenceScore:  0.9,
		ExecutionSeconds: 30,
		OutputSummary:    "ok",
	})
	if err != nil {
		t.Fatalf("AppendExecution failed: %v", err)
	}

	if gotPath != "/appTEST/Agents%20Ledger" {
		t.Errorf("path = %q", gotPath)
	}
	fields, _ := gotBody["fields"].(map[string]any)
	if fields["execution_id"] != "exec_1" {
		t.Errorf("execution_id = %v", fields["execution_id"])
	}
	if fields["tokens_consumed"] != float64(150) {
		t.Errorf("tokens_consumed = %v", fields["tokens_consumed"])
	}
}

func TestAirtableCreateItem_SetsRecordID(t *testing.T) {
	at := newTestAirtable(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "recCreated", "fields": map[string]any{}})
	}))

	item := &models.WorkItem{TaskID: "task_x", Status: models.StatusQueued}
	if err := at.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if item.ID != "recCreated" {
		t.Errorf("item.ID = %q, want recCreated", item.ID)
	}
}
