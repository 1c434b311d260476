package floorplan

import "github.com/ritzau/campus-nav/pkg/geometry"

// LabeledRect is one <rect> taken from a floor plan.
type LabeledRect struct {
	// ID is the element id. Empty for decorative geometry.
	ID   string
	Rect geometry.Rect
	// Cost is only meaningful when HasCost is set.
	Cost    float64
	HasCost bool
	// Seq is the 1-based position of the rect in the document, counting
	// every rect including those without an id.
	Seq int
}

// Document is the geometry extracted from one floor plan.
type Document struct {
	Rects []LabeledRect
	// Malformed counts rects that were dropped because a required attribute
	// was missing or unparsable.
	Malformed int
}
