package widget

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults returns a registry with the builtin renderers registered:
// chart, table, metric, and note.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register("chart", func() Renderer { return chartRenderer{} })
	r.Register("table", func() Renderer { return tableRenderer{} })
	r.Register("metric", func() Renderer { return metricRenderer{} })
	r.Register("note", func() Renderer { return noteRenderer{} })
	return r
}

func invalidPayload(kind string) string {
	return fmt.Sprintf("(%s widget: payload did not match expected shape)", kind)
}

type chartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type chartPayload struct {
	Title  string       `json:"title"`
	Points []chartPoint `json:"points"`
}

type chartRenderer struct{}

func (chartRenderer) Render(data json.RawMessage, width int) string {
	var p chartPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return invalidPayload("chart")
	}
	if len(p.Points) == 0 {
		return strings.TrimSpace(p.Title + "\n(no data)")
	}
	maxV := 0.0
	for _, pt := range p.Points {
		if pt.Value > maxV {
			maxV = pt.Value
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	var lines []string
	if p.Title != "" {
		lines = append(lines, p.Title)
	}
	for _, pt := range p.Points {
		w := int((pt.Value / maxV) * float64(max(1, width-14)))
		if w < 1 {
			w = 1
		}
		lines = append(lines, fmt.Sprintf("%-10s %s", truncate(pt.Label, 10), strings.Repeat("#", w)))
	}
	return strings.Join(lines, "\n")
}

type tablePayload struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type tableRenderer struct{}

func (tableRenderer) Render(data json.RawMessage, width int) string {
	var p tablePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return invalidPayload("table")
	}
	if len(p.Headers) == 0 {
		return "(no data)"
	}
	widths := columnWidths(p)
	lines := []string{joinRow(p.Headers, widths)}
	for _, row := range p.Rows {
		lines = append(lines, joinRow(row, widths))
	}
	return strings.Join(lines, "\n")
}

func columnWidths(p tablePayload) []int {
	widths := make([]int, len(p.Headers))
	for i, h := range p.Headers {
		widths[i] = len(h)
	}
	for _, row := range p.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func joinRow(cells []string, widths []int) string {
	parts := make([]string, 0, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts = append(parts, fmt.Sprintf("%-*s", w, cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

type metricPayload struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Unit  string   `json:"unit"`
	Delta *float64 `json:"delta"`
}

type metricRenderer struct{}

func (metricRenderer) Render(data json.RawMessage, width int) string {
	var p metricPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return invalidPayload("metric")
	}
	line := strings.TrimSpace(fmt.Sprintf("%g %s", p.Value, p.Unit))
	if p.Delta != nil {
		line += fmt.Sprintf("  (%+g)", *p.Delta)
	}
	if p.Label == "" {
		return line
	}
	return p.Label + "\n" + line
}

type notePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type noteRenderer struct{}

func (noteRenderer) Render(data json.RawMessage, width int) string {
	var p notePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return invalidPayload("note")
	}
	if p.Title == "" {
		return wrap(p.Body, width)
	}
	return p.Title + "\n" + wrap(p.Body, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
