package mapping

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

type ProjectView struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	TemplateID string         `json:"templateId,omitempty"`
	Tags       []string       `json:"tags"`
	Settings   map[string]any `json:"settings"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type ProjectInput struct {
	Title      string         `json:"title"`
	TemplateID string         `json:"templateId"`
	Tags       []string       `json:"tags"`
	Settings   map[string]any `json:"settings"`
}

type ProjectPatch struct {
	Title    *string         `json:"title"`
	Tags     *[]string       `json:"tags"`
	Settings *map[string]any `json:"settings"`
}

func ProjectToView(row *types.Project) ProjectView {
	if row == nil {
		return ProjectView{}
	}
	v := ProjectView{
		ID:        row.ID.String(),
		Title:     row.Title,
		Tags:      append([]string{}, row.Tags...),
		Settings:  jsonObject(row.Settings),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.TemplateID != nil {
		v.TemplateID = row.TemplateID.String()
	}
	return v
}

// ProjectFromInput fills row; template settings are merged by the caller first.
func ProjectFromInput(in ProjectInput, owner uuid.UUID, row *types.Project) {
	row.OwnerUserID = owner
	row.Title = strings.TrimSpace(in.Title)
	row.TemplateID = optionalID(in.TemplateID)
	row.Tags = datatypes.JSONSlice[string](cleanTags(in.Tags))
	row.Settings = toJSON(in.Settings)
}

func ProjectPatchColumns(p ProjectPatch) map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Tags != nil {
		cols["tags"] = datatypes.JSONSlice[string](cleanTags(*p.Tags))
	}
	if p.Settings != nil {
		cols["settings"] = toJSON(*p.Settings)
	}
	return cols
}

type ProjectTemplateView struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	DefaultSettings map[string]any `json:"defaultSettings"`
}

func ProjectTemplateToView(row *types.ProjectTemplate) ProjectTemplateView {
	if row == nil {
		return ProjectTemplateView{}
	}
	return ProjectTemplateView{
		ID:              row.ID.String(),
		Name:            row.Name,
		Description:     row.Description,
		DefaultSettings: jsonObject(row.DefaultSettings),
	}
}

// MergeSettings overlays override onto base without mutating either.
func MergeSettings(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func JSONObject(raw datatypes.JSON) map[string]any { return jsonObject(raw) }

func jsonObject(raw datatypes.JSON) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
