package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/projection"
)

var csvHeader = []string{
	"sequence",
	"title",
	"type",
	"status",
	"duration_minutes",
	"start_minute",
	"end_minute",
	"position_percent",
}

// WriteTimelineCSV writes one row per layout item, in layout order.
func WriteTimelineCSV(w io.Writer, blocks []*types.ContentBlock, layout projection.Layout) error {
	byID := make(map[string]*types.ContentBlock, len(blocks))
	for _, b := range blocks {
		byID[b.OrderKey()] = b
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range layout.Items {
		var title, typ, status string
		if b := byID[it.ID]; b != nil {
			title, typ, status = b.Title, b.Type, b.Status
		}
		rec := []string{
			strconv.Itoa(it.Sequence),
			title,
			typ,
			status,
			num(it.Duration),
			num(it.StartMinute),
			num(it.StartMinute + it.Duration),
			strconv.Itoa(it.PositionPercent),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
