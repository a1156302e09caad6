package widget

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Render dispatches one descriptor through the registry. A registered tag
// renders via its renderer; an unregistered tag degrades to the placeholder.
// Dispatch itself never fails, whatever the payload contains.
func Render(reg *Registry, d Descriptor, width int) string {
	ren, ok := reg.Resolve(d.Type)
	if !ok {
		return Placeholder(d.Type, reg.Tags())
	}
	return ren.Render(d.Data, width)
}

// Placeholder is the unknown-widget body. When a registered tag sits within
// a small edit distance of the unknown one it is offered as a hint, which
// catches the common backend typo case.
func Placeholder(tag string, known []string) string {
	msg := fmt.Sprintf("unknown widget type %q", tag)
	if hint := nearestTag(tag, known); hint != "" {
		msg += fmt.Sprintf("\ndid you mean %q?", hint)
	}
	return msg
}

const maxSuggestDistance = 2

func nearestTag(tag string, known []string) string {
	target := canonicalTag(tag)
	if target == "" {
		return ""
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range known {
		if d := levenshtein.ComputeDistance(target, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
