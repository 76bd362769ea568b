package ics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

type staticSource []reservation.Reservation

func (s staticSource) Snapshot() []reservation.Reservation {
	return s
}

func TestStartTime(t *testing.T) {
	start, err := StartTime(reservation.Reservation{Date: "2025-03-10", Time: "11:00"}, seoul)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC), start.UTC())

	_, err = StartTime(reservation.Reservation{Date: "2025-03-10", Time: "noon"}, seoul)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	id := uuid.New()
	reservations := []reservation.Reservation{
		{Id: id, ContractorName: "Kim", DeceasedName: "Lee", Date: "2025-03-10", Time: "11:00", StaffName: "Park"},
		{Id: uuid.New(), ContractorName: "Choi", DeceasedName: "Jung", Date: "not a date", Time: "11:00"},
	}
	stamp := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	cal := Render(reservations, seoul, stamp)

	parsed, err := ical.ParseCalendar(strings.NewReader(cal.Serialize()))
	require.NoError(t, err)
	events := parsed.Events()
	require.Len(t, events, 1)
	assert.Equal(t, id.String(), events[0].Id())
	assert.Equal(t, "Lee (Kim)", events[0].GetProperty(ical.ComponentPropertySummary).Value)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC)))
	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestGetFeed(t *testing.T) {
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)}
	handler := NewHandler(staticSource{
		{Id: uuid.New(), ContractorName: "Kim", DeceasedName: "Lee", Date: "2025-03-10", Time: "11:00", StaffName: "Park"},
	}, clock, seoul)
	w := httptest.NewRecorder()

	handler.GetFeed(w, httptest.NewRequest(http.MethodGet, "/api/reservation.ics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	body := w.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "SUMMARY:Lee (Kim)")
}
