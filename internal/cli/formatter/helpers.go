package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// HumanDate returns a human-friendly absolute date string.
func HumanDate(t time.Time) string {
	return HumanDateFrom(t, time.Now())
}

// HumanDateFrom returns a human-friendly absolute date string relative
// to a reference time.
func HumanDateFrom(t, now time.Time) string {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	tomorrow := now.AddDate(0, 0, 1)
	y3, m3, d3 := tomorrow.Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Tomorrow"
	}
	return t.Format("Jan 2, 2006")
}

// DeadlineStyled renders a deadline with urgency coloring: red when
// overdue or due within two days, yellow within a week.
func DeadlineStyled(t, now time.Time) string {
	text := t.Format("Jan 2, 15:04")
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days < 0:
		return StyleRed.Render(text + " (overdue)")
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// RefreshAge renders how long ago estimates were refreshed.
func RefreshAge(last *time.Time, now time.Time) string {
	if last == nil {
		return StyleDim.Render("estimates never refreshed")
	}
	diff := now.Sub(*last)
	switch {
	case diff < time.Minute:
		return StyleDim.Render("estimates refreshed just now")
	case diff < time.Hour:
		return StyleDim.Render(fmt.Sprintf("estimates refreshed %dm ago", int(diff.Minutes())))
	case diff < 48*time.Hour:
		return StyleDim.Render(fmt.Sprintf("estimates refreshed %dh ago", int(diff.Hours())))
	default:
		return StyleDim.Render(fmt.Sprintf("estimates refreshed %dd ago", int(diff.Hours()/24)))
	}
}
