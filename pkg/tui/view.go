package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sangjo/reservation-desk/pkg/desk"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	docStyle     = lipgloss.NewStyle().Padding(1, 2)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bookedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	freeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	sundayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	saturdayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

var weekdayLabels = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" Reservation Desk "))
	s.WriteString("\n\n")

	rows := m.session.DaySchedule()
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.calendarView()),
		panelStyle.Render(m.scheduleView(rows)),
	)
	s.WriteString(top)
	s.WriteString("\n")

	switch m.session.Modal {
	case desk.CreateOpen, desk.EditOpen:
		s.WriteString(dialogStyle.Render(m.formView()))
	case desk.DetailOpen:
		s.WriteString(dialogStyle.Render(m.detailView()))
	default:
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(m.listView("Today", paneToday, m.session.TodayList())),
			panelStyle.Render(m.listView("Recent", paneRecent, m.session.RecentList())),
		))
	}
	s.WriteString("\n")

	if m.status != "" {
		if m.statusIsError {
			s.WriteString(errorStyle.Render(m.status))
		} else {
			s.WriteString(infoStyle.Render(m.status))
		}
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render(m.helpLine()))

	return docStyle.Render(s.String())
}

func (m Model) calendarView() string {
	cal := m.session.Calendar()

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", time.Month(cal.Month+1), cal.Year)))
	b.WriteString("\n")
	for i, label := range weekdayLabels {
		cell := fmt.Sprintf("%-4s", label)
		switch i {
		case 0:
			cell = sundayStyle.Render(cell)
		case 6:
			cell = saturdayStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	b.WriteString("\n")

	b.WriteString(strings.Repeat("    ", cal.LeadingBlanks))
	column := cal.LeadingBlanks
	for _, day := range cal.Days {
		b.WriteString(dayCell(day))
		column++
		if column == 7 {
			b.WriteString("\n")
			column = 0
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func dayCell(day viewmodel.DayCell) string {
	marker := " "
	if day.Count > 0 {
		marker = "*"
	}
	text := fmt.Sprintf("%2d%s", day.Day, marker)

	style := lipgloss.NewStyle()
	switch day.Kind {
	case viewmodel.DayFirstWeekday:
		style = sundayStyle
	case viewmodel.DayLastWeekday:
		style = saturdayStyle
	}
	if day.IsToday {
		style = style.Inherit(todayStyle)
	}
	if day.IsSelected {
		style = style.Inherit(selectedStyle)
	}
	return style.Render(text) + " "
}

func (m Model) scheduleView(rows []viewmodel.SlotRow) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.session.Nav.SelectedDate))
	b.WriteString("\n")
	current, hasCurrent := m.selectedRow(rows)
	for _, row := range rows {
		cursor := "  "
		if hasCurrent && row.Slot == current.Slot && m.session.Modal == desk.Closed && m.pane == paneSchedule {
			cursor = "> "
		}
		var line string
		if row.Reservation != nil {
			line = bookedStyle.Render(fmt.Sprintf("%-15s %s (%s)", row.Label, row.Reservation.DeceasedName, row.Reservation.ContractorName))
		} else {
			line = freeStyle.Render(fmt.Sprintf("%-15s %s", row.Label, row.Status))
		}
		b.WriteString(cursor + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) listView(title string, p pane, list viewmodel.List) string {
	focused := m.pane == p
	var b strings.Builder
	if focused {
		b.WriteString(headerStyle.Inherit(focusedStyle).Render(title))
	} else {
		b.WriteString(headerStyle.Render(title))
	}
	b.WriteString("\n")
	if list.Placeholder != "" {
		b.WriteString(helpStyle.Render(list.Placeholder))
		return b.String()
	}
	for i, item := range list.Items {
		cursor := "  "
		if focused && i == m.listCursor {
			cursor = "> "
		}
		b.WriteString(cursor + item.Text + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) formView() string {
	var b strings.Builder
	if m.session.Modal == desk.EditOpen {
		b.WriteString(headerStyle.Render("Edit reservation"))
	} else {
		b.WriteString(headerStyle.Render("New reservation"))
	}
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		label := fmt.Sprintf("%-11s", fieldLabels[i])
		if i == m.focus {
			label = focusedStyle.Render(label)
		}
		b.WriteString(label + " " + input.View() + "\n")
	}
	if m.confirming {
		b.WriteString("\n" + errorStyle.Render("Delete this reservation? (y/n)"))
	}
	if m.working != "" {
		b.WriteString("\n" + helpStyle.Render(m.working))
	}
	return b.String()
}

func (m Model) detailView() string {
	r := m.session.Detail
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Reservation"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%-11s %s\n", "Contractor", r.ContractorName)
	fmt.Fprintf(&b, "%-11s %s\n", "Deceased", r.DeceasedName)
	fmt.Fprintf(&b, "%-11s %s\n", "Date", r.Date)
	fmt.Fprintf(&b, "%-11s %s\n", "Time", viewmodel.SlotLabel(r.Time))
	fmt.Fprintf(&b, "%-11s %s", "Staff", r.StaffName)
	return b.String()
}

func (m Model) helpLine() string {
	switch {
	case m.working != "":
		return "ctrl+c: quit"
	case m.confirming:
		return "y: delete • n/esc: keep"
	case m.session.Modal == desk.CreateOpen:
		return "tab/shift+tab: field • enter: save • esc: cancel"
	case m.session.Modal == desk.EditOpen:
		return "tab/shift+tab: field • enter: save • ctrl+d: delete • esc: cancel"
	case m.session.Modal == desk.DetailOpen:
		return "e: edit • esc: close"
	}
	if m.pane != paneSchedule {
		return "tab: panel • ↑/↓: entry • enter: open • n: new • r: reload • q: quit"
	}
	return "←/→: day • ↑/↓: slot • tab: panel • [/]: month • {/}: year • t: today • enter: open • n: new • r: reload • q: quit"
}
