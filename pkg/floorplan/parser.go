package floorplan

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ritzau/campus-nav/pkg/geometry"
	"github.com/ritzau/campus-nav/pkg/logging"
)

// ErrEmptyDocument is returned when the input has no root element.
var ErrEmptyDocument = errors.New("floor plan has no root element")

var translatePattern = regexp.MustCompile(`translate\(\s*([-+0-9.eE]+)(?:[\s,]+([-+0-9.eE]+))?\s*\)`)

// Parser extracts labeled rectangles from SVG floor plans.
type Parser struct{}

// NewParser creates a new floor plan parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseBytes parses an SVG document held in memory.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	return p.Parse(bytes.NewReader(data))
}

// Parse reads an SVG document and returns every <rect> at any depth.
// translate() transforms on the rect and its ancestors are applied, other
// transforms are ignored. A rect with a missing or unparsable size is
// skipped and counted; XML that cannot be decoded fails the whole document.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	doc := &Document{}
	var offsets []geometry.Point
	seenRoot := false
	seq := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SVG: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			seenRoot = true
			parent := geometry.Point{}
			if len(offsets) > 0 {
				parent = offsets[len(offsets)-1]
			}
			offset := addTranslate(parent, attr(t, "transform"))
			offsets = append(offsets, offset)

			if t.Name.Local != "rect" {
				continue
			}
			seq++
			rect, ok := parseRect(t, offset, seq)
			if !ok {
				doc.Malformed++
				logging.Debug("skipping malformed rect", "seq", seq, "id", rect.ID)
				continue
			}
			doc.Rects = append(doc.Rects, rect)

		case xml.EndElement:
			if len(offsets) > 0 {
				offsets = offsets[:len(offsets)-1]
			}
		}
	}

	if !seenRoot {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

func parseRect(el xml.StartElement, offset geometry.Point, seq int) (LabeledRect, bool) {
	rect := LabeledRect{ID: strings.TrimSpace(attr(el, "id")), Seq: seq}

	x, okX := parseLength(attr(el, "x"), true)
	y, okY := parseLength(attr(el, "y"), true)
	w, okW := parseLength(attr(el, "width"), false)
	h, okH := parseLength(attr(el, "height"), false)
	if !okX || !okY || !okW || !okH || w < 0 || h < 0 {
		return rect, false
	}
	rect.Rect = geometry.Rect{X: x + offset.X, Y: y + offset.Y, Width: w, Height: h}

	if raw := strings.TrimSpace(attr(el, "cost")); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(cost) || cost < 0 {
			return rect, false
		}
		rect.Cost = cost
		rect.HasCost = true
	}
	return rect, true
}

// parseLength accepts finite plain numbers and a "px" suffix. An empty value
// is zero when optional.
func parseLength(raw string, optional bool) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, optional
	}
	raw = strings.TrimSuffix(raw, "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func addTranslate(base geometry.Point, transform string) geometry.Point {
	for _, m := range translatePattern.FindAllStringSubmatch(transform, -1) {
		tx, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		ty := 0.0
		if m[2] != "" {
			if v, err := strconv.ParseFloat(m[2], 64); err == nil {
				ty = v
			}
		}
		base.X += tx
		base.Y += ty
	}
	return base
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
