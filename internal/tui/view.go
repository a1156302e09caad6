package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/widget"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	header := titleStyle.Render("localdash")
	body := a.renderBody()
	status := a.renderStatusLine()
	footer := a.renderFooter()

	out := header + "\n\n" + body + "\n" + status + "\n" + footer
	if a.prompt {
		out += "\n\n" + a.renderConsentPrompt()
	}
	return out
}

func (a *App) renderBody() string {
	if a.orch.Denied() {
		st := a.resolver.State()
		msg := "Location unavailable - widgets cannot be loaded."
		if reason := st.Reason.String(); reason != "" {
			msg += "\n" + reason
		}
		return msg + "\nPress r to try again."
	}
	if err := a.orch.Err(); err != nil {
		return errStyle.Render("Widget fetch failed: "+err.Error()) + "\nPress r to retry."
	}

	widgets := a.orch.Widgets()
	if len(widgets) == 0 {
		if a.orch.Loading() {
			return a.spin.View() + " loading widgets..."
		}
		return "No widgets for this location."
	}

	badge := ""
	if a.orch.Stale() {
		badge = "cached"
	}
	panes := make([]string, 0, len(widgets))
	for _, d := range widgets {
		panes = append(panes, a.renderPane(d, badge))
	}
	return strings.Join(panes, "\n")
}

func (a *App) renderPane(d widget.Descriptor, badge string) string {
	width := a.paneWidth()
	title := d.Type
	if badge != "" {
		title += " " + badgeStyle.Render("["+badge+"]")
	}
	header := "[" + title + "]"
	if a.cfg.UI.Compact {
		return header + "\n" + widget.Render(a.registry, d, width)
	}
	content := widget.Render(a.registry, d, width-paneStyle.GetHorizontalFrameSize())
	return paneStyle.Width(width).Render(header + "\n" + content)
}

func (a *App) paneWidth() int {
	if a.width <= 0 {
		return 80
	}
	width := a.width - 4
	if width < 24 {
		width = 24
	}
	return width
}

func (a *App) renderStatusLine() string {
	st := a.resolver.State()
	var parts []string
	switch st.Status {
	case location.StatusGranted:
		if st.Location != nil {
			parts = append(parts, fmt.Sprintf("location %.4f, %.4f", st.Location.Latitude, st.Location.Longitude))
		}
	case location.StatusDenied:
		parts = append(parts, "location denied")
	default:
		parts = append(parts, a.spin.View()+" resolving location...")
		if st.Cached != nil {
			parts = append(parts, fmt.Sprintf("showing cached location %.4f, %.4f", st.Cached.Latitude, st.Cached.Longitude))
		}
	}
	if a.orch.Stale() {
		parts = append(parts, "showing cached widgets")
	}
	if a.status != "" {
		parts = append(parts, a.status)
	}
	return statusStyle.Render(strings.Join(parts, "  |  "))
}

func (a *App) renderFooter() string {
	parts := make([]string, 0, 2)
	for _, binding := range a.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	text := strings.Join(parts, "  ")
	if a.width <= 0 {
		return footerStyle.Render(text)
	}
	return footerStyle.Render(padRight(text, a.width-footerStyle.GetHorizontalFrameSize()))
}

func (a *App) renderConsentPrompt() string {
	body := titleStyle.Render("Share your location?") + "\n" +
		"localdash uses your approximate location to load nearby widgets.\n" +
		"The decision is remembered.\n\n" +
		"[y] allow  [n] deny"
	return modalStyle.Render(body)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
