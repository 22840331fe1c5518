package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/projection"
)

const (
	markerBarH = 28.0
	laneH      = 56.0
	laneGap    = 10.0
	margin     = 16.0
	labelW     = 96.0
)

var (
	bgColor     = color.NRGBA{0xfa, 0xfa, 0xfa, 0xff}
	gridColor   = color.NRGBA{0xdd, 0xdd, 0xdd, 0xff}
	textColor   = color.NRGBA{0x22, 0x22, 0x22, 0xff}
	mutedColor  = color.NRGBA{0x77, 0x77, 0x77, 0xff}
	statusColor = map[string]color.NRGBA{
		types.StatusDraft:       {0x9e, 0x9e, 0x9e, 0xff},
		types.StatusNeedsReview: {0xf5, 0xa6, 0x23, 0xff},
		types.StatusApproved:    {0x43, 0xa0, 0x47, 0xff},
		types.StatusPlanned:     {0x42, 0x85, 0xf4, 0xff},
		types.StatusFilmed:      {0x7e, 0x57, 0xc2, 0xff},
		types.StatusInEdit:      {0x00, 0x96, 0x88, 0xff},
	}
	fallbackColor = color.NRGBA{0x60, 0x7d, 0x8b, 0xff}
)

type PNGOptions struct {
	// MaxWidth downscales wider renders; 0 keeps the natural pixel width.
	MaxWidth int
}

// Renderer draws timeline images. It is safe for concurrent use.
type Renderer struct {
	title *truetype.Font
}

func NewRenderer() (*Renderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse timeline font: %w", err)
	}
	return &Renderer{title: f}, nil
}

// lanesOf groups blocks by type, in first-seen order.
func lanesOf(blocks map[string]*types.ContentBlock, items []projection.Placement) ([]string, map[string]int) {
	var lanes []string
	index := map[string]int{}
	for _, it := range items {
		typ := "untyped"
		if b := blocks[it.ID]; b != nil && b.Type != "" {
			typ = b.Type
		}
		if _, ok := index[typ]; !ok {
			index[typ] = len(lanes)
			lanes = append(lanes, typ)
		}
	}
	return lanes, index
}

// TimelinePNG draws one lane per block type with boxes at their pixel
// layout positions and minute markers along the top.
func (r *Renderer) TimelinePNG(blocks []*types.ContentBlock, layout projection.Layout, opts PNGOptions) ([]byte, error) {
	byID := make(map[string]*types.ContentBlock, len(blocks))
	for _, b := range blocks {
		byID[b.OrderKey()] = b
	}
	lanes, laneOf := lanesOf(byID, layout.Items)
	nLanes := math.Max(float64(len(lanes)), 1)

	w := int(math.Ceil(margin*2 + labelW + layout.TimelineWidth))
	h := int(math.Ceil(margin*2 + markerBarH + nLanes*(laneH+laneGap)))
	dc := gg.NewContext(w, h)
	dc.SetColor(bgColor)
	dc.Clear()

	originX := margin + labelW
	originY := margin + markerBarH

	// markers
	dc.SetFontFace(basicfont.Face7x13)
	for _, m := range layout.Markers {
		x := originX + float64(m.Minute)*layout.PixelsPerMinute
		if x > float64(w)-margin {
			break
		}
		dc.SetColor(gridColor)
		dc.SetLineWidth(1)
		dc.DrawLine(x, originY-4, x, float64(h)-margin)
		dc.Stroke()
		dc.SetColor(mutedColor)
		dc.DrawStringAnchored(m.Label, x, margin+markerBarH/2, 0.5, 0.5)
	}

	for i, name := range lanes {
		y := originY + float64(i)*(laneH+laneGap)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(name, margin, y+laneH/2, 0, 0.5)
	}

	titleFace := truetype.NewFace(r.title, &truetype.Options{Size: 13, Hinting: font.HintingFull})
	defer titleFace.Close()
	dc.SetFontFace(titleFace)
	for _, it := range layout.Items {
		b := byID[it.ID]
		lane := 0
		title := it.ID
		fill := fallbackColor
		if b != nil {
			typ := b.Type
			if typ == "" {
				typ = "untyped"
			}
			lane = laneOf[typ]
			title = b.Title
			if c, ok := statusColor[b.Status]; ok {
				fill = c
			}
		}
		x := originX + it.PixelStart
		y := originY + float64(lane)*(laneH+laneGap)
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(x, y, it.PixelWidth, laneH, 6)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(fit(dc, title, it.PixelWidth-12), x+6, y+laneH/2, 0, 0.5)
	}

	img := dc.Image()
	if opts.MaxWidth > 0 && w > opts.MaxWidth {
		img = downscale(img, opts.MaxWidth)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode timeline png: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates s with an ellipsis until it measures within maxW.
func fit(dc *gg.Context, s string, maxW float64) string {
	if maxW <= 0 {
		return ""
	}
	if w, _ := dc.MeasureString(s); w <= maxW {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 {
		rs = rs[:len(rs)-1]
		cand := string(rs) + "…"
		if w, _ := dc.MeasureString(cand); w <= maxW {
			return cand
		}
	}
	return ""
}

func downscale(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	h := int(math.Round(float64(b.Dy()) * float64(maxW) / float64(b.Dx())))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxW, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
