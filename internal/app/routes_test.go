package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouterTest(t *testing.T) (http.Handler, *Dependencies) {
	cfg := config.Application{Timezone: "UTC", Slots: config.DefaultSlots}
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)}
	deps := BuildDependencies(reservation.NewRepositoryStub(), cfg, clock, reservation.LogNotifier{})
	return NewRouter(deps), deps
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

const kimLee = `{"contractorName":"Kim","deceasedName":"Lee","date":"2025-03-10","time":"11:00","staffName":"Park"}`

func TestRoutes_ReservationLifecycle(t *testing.T) {
	router, deps := setupRouterTest(t)

	w := serve(router, http.MethodPost, "/api/reservation", kimLee)
	require.Equal(t, http.StatusCreated, w.Code)
	var created reservation.ReservationDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.Id)
	require.Len(t, deps.ReservationStore.Snapshot(), 1)

	w = serve(router, http.MethodGet, "/api/reservation/"+created.Id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/api/reservation/today", "")
	require.Equal(t, http.StatusOK, w.Code)
	var today viewmodel.ListDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&today))
	require.Len(t, today.Items, 1)
	assert.Equal(t, "[11:00] Lee (Kim)", today.Items[0].Text)

	w = serve(router, http.MethodGet, "/api/reservation/recent", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/api/schedule?date=2025-03-10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"booked"`)

	w = serve(router, http.MethodGet, "/api/calendar?year=2025&month=2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/api/reservation.ics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UID:"+created.Id)

	w = serve(router, http.MethodDelete, "/api/reservation/"+created.Id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, w.Body.String())
	assert.Len(t, deps.ReservationStore.Snapshot(), 1)

	w = serve(router, http.MethodDelete, "/api/reservation/"+created.Id+"?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
	assert.Empty(t, deps.ReservationStore.Snapshot())
}

func TestRoutes_Health(t *testing.T) {
	router, deps := setupRouterTest(t)

	w := serve(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	deps.Ping = func(ctx context.Context) error { return errors.New("connection refused") }
	w = serve(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRefreshScheduler(t *testing.T) {
	_, deps := setupRouterTest(t)

	scheduler, err := NewRefreshScheduler("", deps.ReservationStore)
	require.NoError(t, err)
	assert.Nil(t, scheduler)

	_, err = NewRefreshScheduler("every now and then", deps.ReservationStore)
	assert.Error(t, err)

	scheduler, err = NewRefreshScheduler("@every 1m", deps.ReservationStore)
	require.NoError(t, err)
	require.NotNil(t, scheduler)
	assert.Len(t, scheduler.Entries(), 1)
}
