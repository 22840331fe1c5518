package mapping

import (
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/ordering"
)

type ContentBlockView struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
	Status      string    `json:"status"`
	Duration    float64   `json:"duration"`
	InStoryArc  bool      `json:"inStoryArc"`
	AISource    string    `json:"aiSource,omitempty"`
	Position    *float64  `json:"position,omitempty"`
	Sequence    int       `json:"sequence"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContentBlockInput is the create payload.
type ContentBlockInput struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Notes       string   `json:"notes"`
	Status      string   `json:"status"`
	Duration    *float64 `json:"duration"`
	InStoryArc  bool     `json:"inStoryArc"`
	AISource    string   `json:"aiSource"`
	Position    *float64 `json:"position"`
	Sequence    *int     `json:"sequence"`
}

// ContentBlockPatch carries only the fields a client sent.
type ContentBlockPatch struct {
	Type        *string  `json:"type"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
	Status      *string  `json:"status"`
	Duration    *float64 `json:"duration"`
	InStoryArc  *bool    `json:"inStoryArc"`
	AISource    *string  `json:"aiSource"`
	Position    *float64 `json:"position"`
}

func ContentBlockToView(row *types.ContentBlock) ContentBlockView {
	if row == nil {
		return ContentBlockView{}
	}
	return ContentBlockView{
		ID:          row.ID.String(),
		ProjectID:   row.ProjectID.String(),
		Type:        row.Type,
		Title:       row.Title,
		Description: row.Description,
		Notes:       row.Notes,
		Status:      row.Status,
		Duration:    ordering.EffectiveDuration(row.Duration),
		InStoryArc:  row.InStoryArc,
		AISource:    row.AISource,
		Position:    row.Position,
		Sequence:    ordering.EffectiveSequence(row.Sequence),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func ContentBlocksToView(rows []*types.ContentBlock) []ContentBlockView {
	out := make([]ContentBlockView, 0, len(rows))
	for _, r := range rows {
		out = append(out, ContentBlockToView(r))
	}
	return out
}

// ContentBlockFromInput fills row from a create payload. Empty status becomes draft.
func ContentBlockFromInput(in ContentBlockInput, projectID uuid.UUID, row *types.ContentBlock) {
	row.ProjectID = projectID
	row.Type = strings.TrimSpace(in.Type)
	if row.Type == "" {
		row.Type = "other"
	}
	row.Title = strings.TrimSpace(in.Title)
	row.Description = in.Description
	row.Notes = in.Notes
	row.Status = strings.TrimSpace(in.Status)
	if row.Status == "" {
		row.Status = types.StatusDraft
	}
	row.Duration = in.Duration
	row.InStoryArc = in.InStoryArc
	row.AISource = in.AISource
	row.Position = in.Position
	row.Sequence = in.Sequence
}

func ContentBlockPatchColumns(p ContentBlockPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "type", p.Type)
	setString(cols, "title", p.Title)
	setString(cols, "description", p.Description)
	setString(cols, "notes", p.Notes)
	setString(cols, "status", p.Status)
	setString(cols, "ai_source", p.AISource)
	if p.Duration != nil {
		cols["duration"] = *p.Duration
	}
	if p.InStoryArc != nil {
		cols["in_story_arc"] = *p.InStoryArc
	}
	if p.Position != nil {
		cols["position"] = *p.Position
	}
	return cols
}

// ContentBlockColumns is the allow-list of columns a write task may patch.
var ContentBlockColumns = map[string]bool{
	"type": true, "title": true, "description": true, "notes": true, "status": true,
	"ai_source": true, "duration": true, "in_story_arc": true, "position": true, "sequence": true,
}

type ScriptBlockView struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	ContentBlockID string    `json:"contentBlockId"`
	Title          string    `json:"title"`
	Where          string    `json:"where"`
	Ears           string    `json:"ears"`
	Eyes           string    `json:"eyes"`
	Status         string    `json:"status"`
	Version        int       `json:"version"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ScriptBlockInput struct {
	ContentBlockID string `json:"contentBlockId"`
	Title          string `json:"title"`
	Where          string `json:"where"`
	Ears           string `json:"ears"`
	Eyes           string `json:"eyes"`
	Status         string `json:"status"`
}

type ScriptBlockPatch struct {
	Title  *string `json:"title"`
	Where  *string `json:"where"`
	Ears   *string `json:"ears"`
	Eyes   *string `json:"eyes"`
	Status *string `json:"status"`
}

func ScriptBlockToView(row *types.ScriptBlock) ScriptBlockView {
	if row == nil {
		return ScriptBlockView{}
	}
	return ScriptBlockView{
		ID:             row.ID.String(),
		ProjectID:      row.ProjectID.String(),
		ContentBlockID: row.ContentBlockID.String(),
		Title:          row.Title,
		Where:          row.Where,
		Ears:           row.Ears,
		Eyes:           row.Eyes,
		Status:         row.Status,
		Version:        row.Version,
		UpdatedAt:      row.UpdatedAt,
	}
}

func ScriptBlockFromInput(in ScriptBlockInput, projectID, contentBlockID uuid.UUID, row *types.ScriptBlock) {
	row.ProjectID = projectID
	row.ContentBlockID = contentBlockID
	row.Title = strings.TrimSpace(in.Title)
	row.Where = in.Where
	row.Ears = in.Ears
	row.Eyes = in.Eyes
	row.Status = strings.TrimSpace(in.Status)
	if row.Status == "" {
		row.Status = types.StatusDraft
	}
	if row.Version == 0 {
		row.Version = 1
	}
}

func ScriptBlockPatchColumns(p ScriptBlockPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "title", p.Title)
	setString(cols, "where_text", p.Where)
	setString(cols, "ears_text", p.Ears)
	setString(cols, "eyes_text", p.Eyes)
	setString(cols, "status", p.Status)
	return cols
}

func setString(cols map[string]any, col string, v *string) {
	if v != nil {
		cols[col] = *v
	}
}

func parseIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil || seen[id.String()] {
			continue
		}
		seen[id.String()] = true
		out = append(out, id.String())
	}
	return out
}
