package graph

import (
	"strings"

	"github.com/ritzau/campus-nav/pkg/model"
)

// FindNode resolves a room identifier to a node. The match is exact but
// ignores case and surrounding whitespace, first against node categories
// and then against node keys. The first match in node order wins.
func FindNode(query string, g *Graph) (*model.Node, bool) {
	q := strings.TrimSpace(query)
	if q == "" || g == nil {
		return nil, false
	}

	for _, n := range g.Nodes() {
		if strings.EqualFold(strings.TrimSpace(n.Category), q) {
			return n, true
		}
	}
	for _, n := range g.Nodes() {
		if strings.EqualFold(n.Key, q) {
			return n, true
		}
	}
	return nil, false
}
