package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/superchase/centcom/pkg/models"
)

const (
	airtableAPIBase    = "https://api.airtable.com/v0"
	workQueueTable     = "Work Queue"
	agentsLedgerTable  = "Agents Ledger"
	unknownFieldErrTyp = "UNKNOWN_FIELD_NAME"
)

// Airtable implements Store against the Airtable REST API. The Work Queue
// table holds work items and the Agents Ledger table holds execution
// records. Schema drift is a fact of life with Airtable bases, so partial
// updates surface ErrUnknownField when the table rejects a field name.
type Airtable struct {
	token   string
	baseURL string
	client  *http.Client
}

// AirtableConfig contains configuration for creating an Airtable store.
type AirtableConfig struct {
	// Token is the Airtable personal access token.
	Token string
	// BaseID identifies the Airtable base holding both tables.
	BaseID string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// NewAirtable creates an Airtable-backed store.
func NewAirtable(cfg AirtableConfig) (*Airtable, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("airtable token is required")
	}
	if cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable base id is required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = airtableAPIBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Airtable{
		token:   cfg.Token,
		baseURL: base + "/" + cfg.BaseID,
		client:  client,
	}, nil
}

// Close implements io.Closer. The HTTP client holds no resources to release.
func (a *Airtable) Close() error { return nil }

// airtableRecord is the wire shape of a single Airtable record.
type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// airtableError is the wire shape of an Airtable error response.
type airtableError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateItem inserts a new work item into the Work Queue table.
func (a *Airtable) CreateItem(ctx context.Context, item *models.WorkItem) error {
	fields := map[string]any{
		"task_id":         item.TaskID,
		"routing_payload": item.RoutingPayload,
		"priority":        string(item.EffectivePriority()),
		"status":          string(item.Status),
		"created_date":    item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.AssignedAgent != "" {
		fields["assigned_agent"] = item.AssignedAgent
	}
	if item.SystemTarget != "" {
		fields["system_target"] = item.SystemTarget
	}

	var created airtableRecord
	if err := a.do(ctx, http.MethodPost, a.tableURL(workQueueTable), map[string]any{"fields": fields}, &created); err != nil {
		return fmt.Errorf("create work item: %w", err)
	}
	item.ID = created.ID
	return nil
}

// GetItem retrieves a work item by record id. Returns nil when not found.
func (a *Airtable) GetItem(ctx context.Context, id string) (*models.WorkItem, error) {
	var rec airtableRecord
	err := a.do(ctx, http.MethodGet, a.tableURL(workQueueTable)+"/"+url.PathEscape(id), nil, &rec)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work item: %w", err)
	}
	item := itemFromRecord(rec)
	return &item, nil
}

// ListQueued returns all queued work items ordered ascending by creation time.
func (a *Airtable) ListQueued(ctx context.Context) ([]models.WorkItem, error) {
	params := url.Values{}
	params.Set("filterByFormula", `{status} = "queued"`)
	params.Set("sort[0][field]", "created_date")
	params.Set("sort[0][direction]", "asc")

	records, err := a.listRecords(ctx, workQueueTable, params)
	if err != nil {
		return nil, fmt.Errorf("list queued items: %w", err)
	}

	items := make([]models.WorkItem, 0, len(records))
	for _, rec := range records {
		items = append(items, itemFromRecord(rec))
	}
	return items, nil
}

// UpdateFields applies a partial update to a work item. A 422 response
// with Airtable's unknown-field error type maps to ErrUnknownField.
func (a *Airtable) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := a.do(ctx, http.MethodPatch, a.tableURL(workQueueTable)+"/"+url.PathEscape(id), map[string]any{"fields": fields}, nil)
	if err != nil {
		return fmt.Errorf("update work item %s: %w", id, err)
	}
	return nil
}

// CountByStatus returns the number of work items per status.
func (a *Airtable) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	params := url.Values{}
	params.Add("fields[]", "status")

	records, err := a.listRecords(ctx, workQueueTable, params)
	if err != nil {
		return nil, fmt.Errorf("count items by status: %w", err)
	}

	counts := make(map[models.Status]int)
	for _, rec := range records {
		counts[models.Status(stringField(rec.Fields, "status"))]++
	}
	return counts, nil
}

// AppendExecution writes a new record to the Agents Ledger table.
func (a *Airtable) AppendExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	fields := map[string]any{
		"execution_id":           rec.ExecutionID,
		"task_ref":               rec.TaskRef,
		"agent_used":             rec.AgentUsed,
		"tokens_consumed":        rec.TokensConsumed,
		"cost_usd":               rec.CostUSD,
		"confidence_score":       rec.ConfidenceScore,
		"execution_time_seconds": rec.ExecutionSeconds,
		"output_summary":         rec.OutputSummary,
	}
	if err := a.do(ctx, http.MethodPost, a.tableURL(agentsLedgerTable), map[string]any{"fields": fields}, nil); err != nil {
		return fmt.Errorf("append execution: %w", err)
	}
	return nil
}

// ListExecutions returns the execution records for a work item, newest
// first. An empty taskRef returns records for all items.
func (a *Airtable) ListExecutions(ctx context.Context, taskRef string) ([]models.ExecutionRecord, error) {
	params := url.Values{}
	if taskRef != "" {
		params.Set("filterByFormula", fmt.Sprintf(`{task_ref} = "%s"`, taskRef))
	}
	params.Set("sort[0][field]", "execution_id")
	params.Set("sort[0][direction]", "desc")

	records, err := a.listRecords(ctx, agentsLedgerTable, params)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}

	out := make([]models.ExecutionRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, models.ExecutionRecord{
			ExecutionID:      stringField(rec.Fields, "execution_id"),
			TaskRef:          stringField(rec.Fields, "task_ref"),
			AgentUsed:        stringField(rec.Fields, "agent_used"),
			TokensConsumed:   intField(rec.Fields, "tokens_consumed"),
			CostUSD:          floatField(rec.Fields, "cost_usd"),
			ConfidenceScore:  floatField(rec.Fields, "confidence_score"),
			ExecutionSeconds: intField(rec.Fields, "execution_time_seconds"),
			OutputSummary:    stringField(rec.Fields, "output_summary"),
		})
	}
	return out, nil
}

// listRecords fetches all records of a table, following pagination offsets.
func (a *Airtable) listRecords(ctx context.Context, table string, params url.Values) ([]airtableRecord, error) {
	var all []airtableRecord
	offset := ""

	for {
		p := url.Values{}
		for k, vs := range params {
			for _, v := range vs {
				p.Add(k, v)
			}
		}
		if offset != "" {
			p.Set("offset", offset)
		}

		var page struct {
			Records []airtableRecord `json:"records"`
			Offset  string           `json:"offset"`
		}
		if err := a.do(ctx, http.MethodGet, a.tableURL(table)+"?"+p.Encode(), nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// do performs one API request and decodes the response into out when non-nil.
func (a *Airtable) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError classifies a non-2xx Airtable response.
func apiError(status int, body []byte) error {
	var ae airtableError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Type != "" {
		if status == http.StatusUnprocessableEntity && ae.Error.Type == unknownFieldErrTyp {
			return fmt.Errorf("%w: %s", ErrUnknownField, ae.Error.Message)
		}
		return fmt.Errorf("airtable %d %s: %s", status, ae.Error.Type, ae.Error.Message)
	}
	return fmt.Errorf("airtable %d: %s", status, string(body))
}

// isNotFound reports whether err is an Airtable 404.
func isNotFound(err error) bool {
	return err != nil && (bytes.Contains([]byte(err.Error()), []byte("airtable 404")))
}

func (a *Airtable) tableURL(table string) string {
	return a.baseURL + "/" + url.PathEscape(table)
}

// Field accessors tolerate Airtable's loose typing of numbers.

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func floatField(fields map[string]any, name string) float64 {
	if v, ok := fields[name].(float64); ok {
		return v
	}
	return 0
}

func intField(fields map[string]any, name string) int {
	return int(floatField(fields, name))
}

// itemFromRecord maps an Airtable record onto a WorkItem.
func itemFromRecord(rec airtableRecord) models.WorkItem {
	item := models.WorkItem{
		ID:             rec.ID,
		TaskID:         stringField(rec.Fields, "task_id"),
		RoutingPayload: stringField(rec.Fields, "routing_payload"),
		Priority:       models.Priority(stringField(rec.Fields, "priority")),
		Status:         models.Status(stringField(rec.Fields, "status")),
		AssignedAgent:  stringField(rec.Fields, "assigned_agent"),
		SystemTarget:   stringField(rec.Fields, "system_target"),
		CostActual:     floatField(rec.Fields, "cost_actual"),
		LastError:      stringField(rec.Fields, "last_error"),
	}
	if s := stringField(rec.Fields, "created_date"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			item.CreatedAt = t
		}
	}
	for name, dst := range map[string]**time.Time{
		"routed_at":    &item.RoutedAt,
		"started_at":   &item.StartedAt,
		"completed_at": &item.CompletedAt,
	} {
		if s := stringField(rec.Fields, name); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				*dst = &t
			}
		}
	}
	return item
}
