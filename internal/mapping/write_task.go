package mapping

import (
	"encoding/json"
	"time"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

type WriteTaskView struct {
	ID          string         `json:"id"`
	BatchID     string         `json:"batchId"`
	EntityType  string         `json:"entityType"`
	EntityID    string         `json:"entityId"`
	Op          string         `json:"op"`
	Payload     map[string]any `json:"payload"`
	Status      string         `json:"status"`
	Attempts    int            `json:"attempts"`
	Error       string         `json:"error,omitempty"`
	CommittedAt *time.Time     `json:"committedAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func WriteTaskToView(row *types.WriteTask) WriteTaskView {
	if row == nil {
		return WriteTaskView{}
	}
	return WriteTaskView{
		ID:          row.ID.String(),
		BatchID:     row.BatchID.String(),
		EntityType:  row.EntityType,
		EntityID:    row.EntityID.String(),
		Op:          row.Op,
		Payload:     jsonObject(row.Payload),
		Status:      row.Status,
		Attempts:    row.Attempts,
		Error:       row.Error,
		CommittedAt: row.CommittedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func WriteTasksToView(rows []*types.WriteTask) []WriteTaskView {
	out := make([]WriteTaskView, 0, len(rows))
	for _, r := range rows {
		out = append(out, WriteTaskToView(r))
	}
	return out
}

// SequencePayload is the body of a set_sequence task.
type SequencePayload struct {
	Sequence   int    `json:"sequence"`
	InStoryArc *bool  `json:"in_story_arc,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// FieldsPayload is the body of a set_fields task; Columns are storage column names.
type FieldsPayload struct {
	Columns   map[string]any `json:"columns"`
	TraceID   string         `json:"trace_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func EncodePayload(v any) ([]byte, error) {
	return json.Marshal(v)
}

// UserSettingView is one preference value as the client sees it.
type UserSettingView struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func UserSettingToView(row *types.UserSetting) UserSettingView {
	if row == nil {
		return UserSettingView{}
	}
	var v any
	if len(row.Value) > 0 {
		_ = json.Unmarshal(row.Value, &v)
	}
	return UserSettingView{Key: row.Key, Value: v, UpdatedAt: row.UpdatedAt}
}

type APIKeyStatusView struct {
	Provider   string     `json:"provider"`
	Configured bool       `json:"configured"`
	Hint       string     `json:"hint,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func APIKeyToStatusView(provider string, row *types.APIKey) APIKeyStatusView {
	if row == nil {
		return APIKeyStatusView{Provider: provider}
	}
	t := row.UpdatedAt
	return APIKeyStatusView{Provider: provider, Configured: true, Hint: row.Hint, UpdatedAt: &t}
}
