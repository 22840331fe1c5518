package mapping

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

type TimelineItemView struct {
	ID             string   `json:"id"`
	ContentBlockID string   `json:"contentBlockId"`
	Date           string   `json:"date"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	LocationID     string   `json:"locationId,omitempty"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
	CrewIDs        []string `json:"crewIds"`
	EquipmentIDs   []string `json:"equipmentIds"`
}

type TimelineItemInput struct {
	ContentBlockID string   `json:"contentBlockId"`
	Date           string   `json:"date"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	LocationID     string   `json:"locationId"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
	CrewIDs        []string `json:"crewIds"`
	EquipmentIDs   []string `json:"equipmentIds"`
}

type TimelineItemPatch struct {
	Date         *string   `json:"date"`
	StartTime    *string   `json:"startTime"`
	EndTime      *string   `json:"endTime"`
	LocationID   *string   `json:"locationId"`
	Status       *string   `json:"status"`
	Notes        *string   `json:"notes"`
	CrewIDs      *[]string `json:"crewIds"`
	EquipmentIDs *[]string `json:"equipmentIds"`
}

func TimelineItemToView(row *types.TimelineItem) TimelineItemView {
	if row == nil {
		return TimelineItemView{}
	}
	v := TimelineItemView{
		ID:             row.ID.String(),
		ContentBlockID: row.ContentBlockID.String(),
		Date:           row.Date,
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		Status:         row.Status,
		Notes:          row.Notes,
		CrewIDs:        append([]string{}, row.CrewIDs...),
		EquipmentIDs:   append([]string{}, row.EquipmentIDs...),
	}
	if row.LocationID != nil {
		v.LocationID = row.LocationID.String()
	}
	return v
}

func TimelineItemFromInput(in TimelineItemInput, projectID, contentBlockID uuid.UUID, row *types.TimelineItem) {
	row.ProjectID = projectID
	row.ContentBlockID = contentBlockID
	row.Date = strings.TrimSpace(in.Date)
	row.StartTime = strings.TrimSpace(in.StartTime)
	row.EndTime = strings.TrimSpace(in.EndTime)
	row.LocationID = optionalID(in.LocationID)
	row.Status = strings.TrimSpace(in.Status)
	if row.Status == "" {
		row.Status = "planned"
	}
	row.Notes = in.Notes
	row.CrewIDs = datatypes.JSONSlice[string](parseIDs(in.CrewIDs))
	row.EquipmentIDs = datatypes.JSONSlice[string](parseIDs(in.EquipmentIDs))
}

func TimelineItemPatchColumns(p TimelineItemPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "date", p.Date)
	setString(cols, "start_time", p.StartTime)
	setString(cols, "end_time", p.EndTime)
	setString(cols, "status", p.Status)
	setString(cols, "notes", p.Notes)
	if p.LocationID != nil {
		cols["location_id"] = optionalID(*p.LocationID)
	}
	if p.CrewIDs != nil {
		cols["crew_ids"] = datatypes.JSONSlice[string](parseIDs(*p.CrewIDs))
	}
	if p.EquipmentIDs != nil {
		cols["equipment_ids"] = datatypes.JSONSlice[string](parseIDs(*p.EquipmentIDs))
	}
	return cols
}

func optionalID(s string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

type CrewMemberView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

type CrewMemberInput struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

type CrewMemberPatch struct {
	Name    *string `json:"name"`
	Role    *string `json:"role"`
	Contact *string `json:"contact"`
	Notes   *string `json:"notes"`
}

func CrewMemberToView(row *types.CrewMember) CrewMemberView {
	if row == nil {
		return CrewMemberView{}
	}
	return CrewMemberView{ID: row.ID.String(), Name: row.Name, Role: row.Role, Contact: row.Contact, Notes: row.Notes}
}

func CrewMemberFromInput(in CrewMemberInput, projectID uuid.UUID, row *types.CrewMember) {
	row.ProjectID = projectID
	row.Name = strings.TrimSpace(in.Name)
	row.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if row.Role == "" {
		row.Role = "other"
	}
	row.Contact = in.Contact
	row.Notes = in.Notes
}

func CrewMemberPatchColumns(p CrewMemberPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "name", p.Name)
	if p.Role != nil {
		cols["role"] = strings.ToLower(strings.TrimSpace(*p.Role))
	}
	setString(cols, "contact", p.Contact)
	setString(cols, "notes", p.Notes)
	return cols
}

type EquipmentView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	IsPacked bool   `json:"isPacked"`
	Barcode  string `json:"barcode,omitempty"`
	Notes    string `json:"notes"`
}

type EquipmentInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	IsPacked bool   `json:"isPacked"`
	Barcode  string `json:"barcode"`
	Notes    string `json:"notes"`
}

type EquipmentPatch struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Quantity *int    `json:"quantity"`
	IsPacked *bool   `json:"isPacked"`
	Barcode  *string `json:"barcode"`
	Notes    *string `json:"notes"`
}

func EquipmentToView(row *types.Equipment) EquipmentView {
	if row == nil {
		return EquipmentView{}
	}
	return EquipmentView{
		ID:       row.ID.String(),
		Name:     row.Name,
		Category: row.Category,
		Quantity: row.Quantity,
		IsPacked: row.IsPacked,
		Barcode:  row.Barcode,
		Notes:    row.Notes,
	}
}

func EquipmentFromInput(in EquipmentInput, projectID uuid.UUID, row *types.Equipment) {
	row.ProjectID = projectID
	row.Name = strings.TrimSpace(in.Name)
	row.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if row.Category == "" {
		row.Category = "misc"
	}
	row.Quantity = in.Quantity
	if row.Quantity < 1 {
		row.Quantity = 1
	}
	row.IsPacked = in.IsPacked
	row.Barcode = strings.TrimSpace(in.Barcode)
	row.Notes = in.Notes
}

func EquipmentPatchColumns(p EquipmentPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "name", p.Name)
	if p.Category != nil {
		cols["category"] = strings.ToLower(strings.TrimSpace(*p.Category))
	}
	if p.Quantity != nil {
		q := *p.Quantity
		if q < 1 {
			q = 1
		}
		cols["quantity"] = q
	}
	if p.IsPacked != nil {
		cols["is_packed"] = *p.IsPacked
	}
	setString(cols, "barcode", p.Barcode)
	setString(cols, "notes", p.Notes)
	return cols
}

type LocationView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	MapLink     string `json:"mapLink,omitempty"`
	ContactName string `json:"contactName,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`
	Constraints string `json:"constraints,omitempty"`
	Notes       string `json:"notes"`
}

type LocationInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	MapLink     string `json:"mapLink"`
	ContactName string `json:"contactName"`
	ContactInfo string `json:"contactInfo"`
	Constraints string `json:"constraints"`
	Notes       string `json:"notes"`
}

type LocationPatch struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	MapLink     *string `json:"mapLink"`
	ContactName *string `json:"contactName"`
	ContactInfo *string `json:"contactInfo"`
	Constraints *string `json:"constraints"`
	Notes       *string `json:"notes"`
}

func LocationToView(row *types.Location) LocationView {
	if row == nil {
		return LocationView{}
	}
	return LocationView{
		ID:          row.ID.String(),
		Name:        row.Name,
		Address:     row.Address,
		MapLink:     row.MapLink,
		ContactName: row.ContactName,
		ContactInfo: row.ContactInfo,
		Constraints: row.Constraints,
		Notes:       row.Notes,
	}
}

func LocationFromInput(in LocationInput, projectID uuid.UUID, row *types.Location) {
	row.ProjectID = projectID
	row.Name = strings.TrimSpace(in.Name)
	row.Address = in.Address
	row.MapLink = strings.TrimSpace(in.MapLink)
	row.ContactName = in.ContactName
	row.ContactInfo = in.ContactInfo
	row.Constraints = in.Constraints
	row.Notes = in.Notes
}

func LocationPatchColumns(p LocationPatch) map[string]any {
	cols := map[string]any{}
	setString(cols, "name", p.Name)
	setString(cols, "address", p.Address)
	setString(cols, "map_link", p.MapLink)
	setString(cols, "contact_name", p.ContactName)
	setString(cols, "contact_info", p.ContactInfo)
	setString(cols, "constraints", p.Constraints)
	setString(cols, "notes", p.Notes)
	return cols
}
