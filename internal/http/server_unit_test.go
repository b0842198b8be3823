package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fuel-tracker/internal/core"
	applog "fuel-tracker/internal/log"
	"fuel-tracker/internal/service"
	"fuel-tracker/internal/service/mock"
)

func newTestServer(t *testing.T, store service.EntryStore) *Server {
	t.Helper()
	tracker := service.NewTracker(store, service.Options{
		Location: time.UTC,
		Logger:   applog.Discard(),
		Now:      func() time.Time { return time.Date(2024, time.April, 15, 12, 0, 0, 0, time.UTC) },
	})
	return NewServer(tracker, applog.Discard())
}

func TestServer_createEntry(t *testing.T) {
	t.Parallel()

	type params struct {
		payload  map[string]any
		addEntry func(params core.CreateEntryParams) (core.FuelEntry, error)
	}
	type want struct {
		statusCode     int
		expectErrorKey bool
		expectDetails  bool
		pricePerUnit   float64
	}

	tcs := []struct {
		name   string
		params params
		want   want
	}{
		{
			name: "creates entry",
			params: params{
				payload: map[string]any{"date": "2024-04-02T09:00:00Z", "cost": 45.0, "amount": 30.0, "unit": "Liters"},
				addEntry: func(p core.CreateEntryParams) (core.FuelEntry, error) {
					return core.NewEntry(p, time.Now().UTC())
				},
			},
			want: want{statusCode: http.StatusCreated, pricePerUnit: 1.5},
		},
		{
			name: "surfaces validation details",
			params: params{
				payload: map[string]any{"cost": 0, "amount": 30.0},
				addEntry: func(p core.CreateEntryParams) (core.FuelEntry, error) {
					return core.NewEntry(p, time.Now().UTC())
				},
			},
			want: want{statusCode: http.StatusBadRequest, expectErrorKey: true, expectDetails: true},
		},
		{
			name: "handles persistence failures",
			params: params{
				payload: map[string]any{"cost": 10.0, "amount": 5.0},
				addEntry: func(core.CreateEntryParams) (core.FuelEntry, error) {
					return core.FuelEntry{}, errors.New("disk full")
				},
			},
			want: want{statusCode: http.StatusInternalServerError, expectErrorKey: true},
		},
		{
			name:   "rejects unparseable dates",
			params: params{payload: map[string]any{"date": "yesterday", "cost": 10.0, "amount": 5.0}},
			want:   want{statusCode: http.StatusBadRequest, expectErrorKey: true},
		},
		{
			name:   "rejects unknown units",
			params: params{payload: map[string]any{"cost": 10.0, "amount": 5.0, "unit": "pints"}},
			want:   want{statusCode: http.StatusBadRequest, expectErrorKey: true},
		},
		{
			name:   "rejects unknown fields",
			params: params{payload: map[string]any{"cost": 10.0, "amount": 5.0, "liters": 5}},
			want:   want{statusCode: http.StatusBadRequest, expectErrorKey: true},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mock.NewMockEntryStore(ctrl)
			if tc.params.addEntry != nil {
				storeMock.EXPECT().AddEntry(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p core.CreateEntryParams) (core.FuelEntry, error) {
						return tc.params.addEntry(p)
					}).Times(1)
			}

			server := newTestServer(t, storeMock)

			body, err := json.Marshal(tc.params.payload)
			require.NoError(t, err, tc.name)

			req := httptest.NewRequest(http.MethodPost, "/api/entries", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			server.createEntry(rec, req)

			res := rec.Result()
			defer res.Body.Close()

			assert.Equal(t, tc.want.statusCode, res.StatusCode, tc.name)
			responseBody, err := io.ReadAll(res.Body)
			require.NoError(t, err, tc.name)

			if tc.want.expectErrorKey {
				var payload map[string]any
				require.NoError(t, json.Unmarshal(responseBody, &payload), tc.name)
				assert.Contains(t, payload, "error", tc.name)
				if tc.want.expectDetails {
					assert.Contains(t, payload, "details", tc.name)
				}
				return
			}

			var entry core.FuelEntry
			require.NoError(t, json.Unmarshal(responseBody, &entry), tc.name)
			assert.InDelta(t, tc.want.pricePerUnit, entry.PricePerUnit, 1e-9, tc.name)
			assert.Equal(t, core.UnitLiters, entry.Unit, tc.name)
		})
	}
}

func TestServer_entryByID(t *testing.T) {
	t.Parallel()

	type params struct {
		method string
		path   string
		body   string
		setup  func(m *mock.MockEntryStore)
	}
	type want struct {
		statusCode int
	}

	tcs := []struct {
		name   string
		params params
		want   want
	}{
		{
			name: "update unknown entry",
			params: params{
				method: http.MethodPut,
				path:   "/api/entries/missing",
				body:   `{"cost":10,"amount":5}`,
				setup: func(m *mock.MockEntryStore) {
					m.EXPECT().UpdateEntry(gomock.Any(), core.ID("missing"), gomock.Any()).Return(core.FuelEntry{}, core.ErrEntryNotFound)
				},
			},
			want: want{statusCode: http.StatusNotFound},
		},
		{
			name: "update keeps id",
			params: params{
				method: http.MethodPut,
				path:   "/api/entries/abc",
				body:   `{"date":"2024-04-01","cost":10,"amount":5,"notes":"fixed"}`,
				setup: func(m *mock.MockEntryStore) {
					m.EXPECT().UpdateEntry(gomock.Any(), core.ID("abc"), gomock.Any()).DoAndReturn(
						func(_ context.Context, id core.ID, p core.UpdateEntryParams) (core.FuelEntry, error) {
							return core.FuelEntry{Meta: core.Meta{ID: id}, Date: p.Date, Cost: p.Cost, Amount: p.Amount, Notes: p.Notes}, nil
						})
				},
			},
			want: want{statusCode: http.StatusOK},
		},
		{
			name: "delete entry",
			params: params{
				method: http.MethodDelete,
				path:   "/api/entries/abc",
				setup: func(m *mock.MockEntryStore) {
					m.EXPECT().DeleteEntry(gomock.Any(), core.ID("abc")).Return(nil)
				},
			},
			want: want{statusCode: http.StatusNoContent},
		},
		{
			name:   "nested path",
			params: params{method: http.MethodDelete, path: "/api/entries/abc/def"},
			want:   want{statusCode: http.StatusNotFound},
		},
		{
			name:   "method not allowed",
			params: params{method: http.MethodPatch, path: "/api/entries/abc"},
			want:   want{statusCode: http.StatusMethodNotAllowed},
		},
		{
			name:   "recent rejects bad limit",
			params: params{method: http.MethodGet, path: "/api/entries/recent?limit=zero"},
			want:   want{statusCode: http.StatusBadRequest},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			storeMock := mock.NewMockEntryStore(ctrl)
			if tc.params.setup != nil {
				tc.params.setup(storeMock)
			}

			server := newTestServer(t, storeMock)
			req := httptest.NewRequest(tc.params.method, tc.params.path, bytes.NewBufferString(tc.params.body))
			rec := httptest.NewRecorder()

			server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tc.want.statusCode, rec.Code, tc.name)
		})
	}
}

func TestServer_statsViews(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	storeMock := mock.NewMockEntryStore(ctrl)
	storeMock.EXPECT().Settings(gomock.Any()).Return(core.Settings{Language: "en", Currency: "EUR", Unit: core.UnitLiters}, nil).AnyTimes()
	storeMock.EXPECT().Entries(gomock.Any()).Return([]core.FuelEntry{
		{Meta: core.Meta{ID: "a"}, Date: time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), Cost: 50, Amount: 25, Unit: core.UnitLiters},
		{Meta: core.Meta{ID: "b"}, Date: time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC), Cost: 5, Amount: 5, Unit: core.UnitLiters},
	}, nil).AnyTimes()

	server := newTestServer(t, storeMock)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/monthly", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var months []struct {
		Month            string `json:"month"`
		Label            string `json:"label"`
		TotalCostDisplay string `json:"totalCostDisplay"`
		BarPercent       int    `json:"barPercent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Len(t, months, 2)
	assert.Equal(t, "2024-04", months[0].Month)
	assert.Equal(t, "April 2024", months[0].Label)
	assert.Equal(t, "€5.00", months[0].TotalCostDisplay)
	assert.Equal(t, minBarPercent, months[0].BarPercent)
	assert.Equal(t, 100, months[1].BarPercent)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/current-month", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var current struct {
		Month                 string  `json:"month"`
		EntryCount            int     `json:"entryCount"`
		AveragePerFill        float64 `json:"averagePerFill"`
		AveragePerFillDisplay string  `json:"averagePerFillDisplay"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "2024-04", current.Month)
	assert.Equal(t, 1, current.EntryCount)
	assert.Equal(t, "€5.00", current.AveragePerFillDisplay)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/weekly", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_exportFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	storeMock := mock.NewMockEntryStore(ctrl)
	storeMock.EXPECT().Entries(gomock.Any()).Return(nil, errors.New("corrupt file")).Times(2)

	server := newTestServer(t, storeMock)

	for _, path := range []string{"/api/export/json", "/api/export/csv"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
	}
}

func TestBarPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, barPercent(0, 100))
	assert.Equal(t, 0, barPercent(10, 0))
	assert.Equal(t, minBarPercent, barPercent(1, 100))
	assert.Equal(t, 50, barPercent(50, 100))
	assert.Equal(t, 100, barPercent(100, 100))
}
