// Package tui is the staff console: a terminal rendition of the desk with the
// month calendar, the day schedule, the side lists and the reservation dialogs.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/desk"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
)

const commandTimeout = 15 * time.Second

type Options struct {
	Commands reservation.Commands
	Store    *reservation.Store
	Bus      *event_bus.EventBus
	Notifier *StatusNotifier
	Clock    utils.Clock
	Location *time.Location
	Slots    []string
}

const (
	fieldContractor = iota
	fieldDeceased
	fieldDate
	fieldTime
	fieldStaff
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Contractor",
	"Deceased",
	"Date",
	"Time",
	"Staff",
}

// pane is the browse panel that takes the cursor keys.
type pane int

const (
	paneSchedule pane = iota
	paneToday
	paneRecent
	paneCount
)

type submittedMsg struct {
	saved reservation.Reservation
	err   error
}

type deletedMsg struct {
	deleted bool
	err     error
}

type Model struct {
	ctx      context.Context
	session  *desk.Session
	store    *reservation.Store
	notifier *StatusNotifier

	inputs     [fieldCount]textinput.Model
	focus      int
	pane       pane
	slotCursor int
	listCursor int
	confirming bool
	// working is shown in the dialog while a command runs; keys are ignored meanwhile.
	working string

	status        string
	statusIsError bool

	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, opts Options) Model {
	m := Model{
		ctx:      ctx,
		session:  desk.NewSession(opts.Commands, opts.Store, opts.Clock, opts.Location, opts.Slots),
		store:    opts.Store,
		notifier: opts.Notifier,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		m.inputs[i] = ti
	}
	m.inputs[fieldDate].Placeholder = utils.DateLayout
	m.inputs[fieldTime].Placeholder = "10:00"
	return m
}

// Run opens the console and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Notifier == nil {
		opts.Notifier = NewStatusNotifier()
	}
	if opts.Bus != nil {
		defer opts.Notifier.Subscribe(opts.Bus)()
	}
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	return m.notifier.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case statusMsg:
		m.status, m.statusIsError = msg.text, msg.isError
		return m, m.notifier.wait()

	case refreshedMsg:
		m.session.Refreshed()
		m.clampCursor()
		return m, m.notifier.wait()

	case submittedMsg:
		m.working = ""
		if _, err := m.session.Submitted(msg.saved, msg.err); err != nil {
			m.setError(err)
			return m, nil
		}
		m.blurAll()
		m.clampCursor()
		return m, nil

	case deletedMsg:
		m.working = ""
		deleted, err := m.session.Deleted(msg.deleted, msg.err)
		switch {
		case err != nil:
			m.setError(err)
		case !deleted:
			m.status, m.statusIsError = "Deletion cancelled.", false
		default:
			m.blurAll()
			m.clampCursor()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.working != "" {
			return m, nil
		}
		if m.confirming {
			return m.updateConfirm(msg)
		}
		switch m.session.Modal {
		case desk.CreateOpen, desk.EditOpen:
			return m.updateForm(msg)
		case desk.DetailOpen:
			return m.updateDetail(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		m.moveDays(-1)
	case "right", "l":
		m.moveDays(1)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "tab":
		m.pane = (m.pane + 1) % paneCount
		m.listCursor = 0
	case "shift+tab":
		m.pane = (m.pane + paneCount - 1) % paneCount
		m.listCursor = 0
	case "[":
		m.session.ShiftMonth(-1)
	case "]":
		m.session.ShiftMonth(1)
	case "{":
		m.session.SetYear(m.session.Nav.Year - 1)
	case "}":
		m.session.SetYear(m.session.Nav.Year + 1)
	case "t":
		m.session.GoToToday()
	case "r":
		store := m.store
		return m, m.background(func(ctx context.Context) tea.Msg {
			_ = store.Refresh(ctx)
			return nil
		})
	case "n":
		return m, m.openCreate("")
	case "enter":
		if list, ok := m.focusedList(); ok {
			if m.listCursor < len(list.Items) {
				m.setError(m.session.OpenDetail(list.Items[m.listCursor].Reservation))
			}
			return m, nil
		}
		rows := m.session.DaySchedule()
		if m.slotCursor >= len(rows) {
			return m, nil
		}
		row := rows[m.slotCursor]
		if row.Reservation != nil {
			m.setError(m.session.OpenDetail(*row.Reservation))
			return m, nil
		}
		return m, m.openCreate(row.Slot)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.session.Cancel()
	case "e":
		if m.session.Detail == nil {
			return m, nil
		}
		if err := m.session.OpenEdit(*m.session.Detail); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.loadForm()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.Cancel()
		m.blurAll()
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "ctrl+d":
		if m.session.Modal == desk.EditOpen {
			m.confirming = true
		}
		return m, nil
	case "enter":
		m.storeForm()
		send, err := m.session.SubmitCommand()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.working = "Saving..."
		return m, m.background(func(ctx context.Context) tea.Msg {
			saved, err := send(ctx)
			return submittedMsg{saved: saved, err: err}
		})
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch msg.String() {
	case "y", "Y":
		answer = true
	case "n", "N", "esc":
		answer = false
	default:
		return m, nil
	}
	m.confirming = false

	remove, err := m.session.DeleteCommand(reservation.ConfirmFunc(func(context.Context, uuid.UUID) bool {
		return answer
	}))
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.working = "Deleting..."
	return m, m.background(func(ctx context.Context) tea.Msg {
		deleted, err := remove(ctx)
		return deletedMsg{deleted: deleted, err: err}
	})
}

// background runs call outside the event loop, bounded by commandTimeout.
func (m Model) background(call func(ctx context.Context) tea.Msg) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, commandTimeout)
		defer cancel()
		return call(ctx)
	}
}

func (m *Model) openCreate(slot string) tea.Cmd {
	if err := m.session.OpenCreate(m.session.Nav.SelectedDate); err != nil {
		m.setError(err)
		return nil
	}
	m.session.Form.Time = slot
	return m.loadForm()
}

// loadForm copies the session form into the inputs and focuses the first empty field.
func (m *Model) loadForm() tea.Cmd {
	form := m.session.Form
	values := [fieldCount]string{form.ContractorName, form.DeceasedName, form.Date, form.Time, form.StaffName}
	first := -1
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		if first < 0 && values[i] == "" {
			first = i
		}
	}
	if first < 0 {
		first = 0
	}
	return m.focusField(first)
}

func (m *Model) storeForm() {
	m.session.Form = desk.Form{
		ContractorName: m.inputs[fieldContractor].Value(),
		DeceasedName:   m.inputs[fieldDeceased].Value(),
		Date:           m.inputs[fieldDate].Value(),
		Time:           m.inputs[fieldTime].Value(),
		StaffName:      m.inputs[fieldStaff].Value(),
	}
}

func (m *Model) focusField(field int) tea.Cmd {
	m.focus = field
	for i := range m.inputs {
		if i != field {
			m.inputs[i].Blur()
		}
	}
	return m.inputs[field].Focus()
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.focus = 0
}

// moveDays moves the selection, following it into the neighbouring month when needed.
func (m *Model) moveDays(delta int) {
	selected, err := time.Parse(utils.DateLayout, m.session.Nav.SelectedDate)
	if err != nil {
		return
	}
	next := selected.AddDate(0, 0, delta)
	if next.Year() != m.session.Nav.Year || int(next.Month())-1 != m.session.Nav.Month {
		m.session.SetYear(next.Year())
		_ = m.session.SetMonth(int(next.Month()) - 1)
	}
	_ = m.session.SelectDate(next.Format(utils.DateLayout))
}

func (m *Model) moveCursor(delta int) {
	if m.pane == paneSchedule {
		m.slotCursor += delta
	} else {
		m.listCursor += delta
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.slotCursor = clamp(m.slotCursor, len(m.session.Slots())-1)
	if list, ok := m.focusedList(); ok {
		m.listCursor = clamp(m.listCursor, len(list.Items)-1)
	}
}

func clamp(cursor, last int) int {
	return max(min(cursor, last), 0)
}

// focusedList is the side list under the cursor; false while the schedule has focus.
func (m Model) focusedList() (viewmodel.List, bool) {
	switch m.pane {
	case paneToday:
		return m.session.TodayList(), true
	case paneRecent:
		return m.session.RecentList(), true
	}
	return viewmodel.List{}, false
}

func (m *Model) setError(err error) {
	if err != nil {
		m.status, m.statusIsError = err.Error(), true
	}
}

// selectedRow is the schedule row under the cursor, if any.
func (m Model) selectedRow(rows []viewmodel.SlotRow) (viewmodel.SlotRow, bool) {
	if m.slotCursor < 0 || m.slotCursor >= len(rows) {
		return viewmodel.SlotRow{}, false
	}
	return rows[m.slotCursor], true
}
