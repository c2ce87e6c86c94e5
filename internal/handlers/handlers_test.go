package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/locations"
	"svitlo-ua/internal/models"
)

var fixedNow = time.Date(2026, 10, 18, 10, 15, 30, 0, time.UTC)

type fakeHistory struct {
	region   string
	from, to time.Time
	events   []*models.AlarmEvent
	err      error
}

func (f *fakeHistory) GetAlarmHistory(_ context.Context, regionID string, from, to time.Time) ([]*models.AlarmEvent, error) {
	f.region, f.from, f.to = regionID, from, to
	return f.events, f.err
}

func newApp(t *testing.T, h *Handlers) *fiber.App {
	t.Helper()
	if h.Catalog == nil {
		catalog, err := locations.Load()
		require.NoError(t, err)
		h.Catalog = catalog
	}
	if h.Alarm == nil {
		h.Alarm = alarm.NewClient("http://127.0.0.1:1", func() string { return "k" }, time.Second)
	}
	h.Location = time.UTC
	h.Now = func() time.Time { return fixedNow }
	h.Log = zerolog.Nop()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.RegisterRoutes(app)
	return app
}

// upstream starts a fake alarm API and returns a client pointed at it.
func upstream(t *testing.T, key string, fn http.HandlerFunc) (*alarm.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)
	return alarm.NewClient(srv.URL, func() string { return key }, 5*time.Second), srv
}

func do(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestProxyUA_MissingPath(t *testing.T) {
	var called atomic.Bool
	client, _ := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) { called.Store(true) })
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?lang=uk")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Missing required query param: path"}, decode(t, body))
	assert.False(t, called.Load())
}

func TestProxyUA_MissingKey(t *testing.T) {
	var called atomic.Bool
	client, _ := upstream(t, "", func(w http.ResponseWriter, r *http.Request) { called.Store(true) })
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/api/v3/alerts")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "UKRAINEALARM_API_KEY is not set"}, decode(t, body))
	assert.False(t, called.Load())
}

func TestProxyUA_UpstreamStatus(t *testing.T) {
	client, srv := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/api/v3/alerts&lang=uk")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	got := decode(t, body)
	assert.Equal(t, "Upstream request failed", got["error"])
	assert.Equal(t, float64(503), got["upstreamStatus"])
	assert.Equal(t, map[string]any{"message": "maintenance"}, got["upstreamBody"])
	assert.Equal(t, srv.URL+"/api/v3/alerts?lang=uk", got["target"])
}

func TestProxyUA_UpstreamStatusTextBody(t *testing.T) {
	client, _ := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=api/v3/regions")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	got := decode(t, body)
	assert.Equal(t, float64(401), got["upstreamStatus"])
	assert.Equal(t, "bad key", got["upstreamBody"])
}

func TestProxyUA_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := alarm.NewClient(srv.URL, func() string { return "k" }, time.Second)
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/api/v3/alerts")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, decode(t, body)["error"])
}

func TestProxyUA_JSONSuccess(t *testing.T) {
	var got *http.Request
	client, _ := upstream(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`[{"regionId":"31","activeAlerts":[]}]`))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?"+url.Values{"path": {"/api/v3/alerts/31"}, "lang": {"uk"}}.Encode())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.JSONEq(t, `[{"regionId":"31","activeAlerts":[]}]`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "/api/v3/alerts/31", got.URL.Path)
	assert.Equal(t, url.Values{"lang": {"uk"}}, got.URL.Query())
	assert.Equal(t, "secret", got.Header.Get("X-API-Key"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestProxyUA_TextSuccess(t *testing.T) {
	client, _ := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/export")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "a,b\n1,2\n", string(body))
}

func TestProxyUA_DefaultContentType(t *testing.T) {
	client, _ := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("plain"))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/raw")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "plain", string(body))
}

func TestProxyUA_BrokenSuccessJSON(t *testing.T) {
	client, _ := upstream(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"broken`))
	})
	app := newApp(t, &Handlers{Alarm: client})

	resp, body := do(t, app, "/api/ua?path=/api/v3/alerts")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, decode(t, body)["error"])
}

func TestGetLocations(t *testing.T) {
	app := newApp(t, &Handlers{})

	resp, body := do(t, app, "/api/locations")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Oblasts []locations.OblastNode `json:"oblasts"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Oblasts, 3)
	assert.Equal(t, "kyiv", got.Oblasts[0].ID)
	assert.Len(t, got.Oblasts[0].Cities[0].Groups, 3)
}

func TestResolveLocation(t *testing.T) {
	app := newApp(t, &Handlers{})

	resp, body := do(t, app, "/api/locations/resolve?oblast=lviv&city=kyiv-city&group=g3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sel locations.Selection
	require.NoError(t, json.Unmarshal(body, &sel))
	assert.Equal(t, "lviv", sel.OblastID)
	assert.Equal(t, "lviv-city", sel.CityID)
	assert.Equal(t, "g1", sel.GroupID)
	assert.Len(t, sel.Groups, 2)
}

func TestGetSchedule(t *testing.T) {
	app := newApp(t, &Handlers{})

	resp, body := do(t, app, "/api/schedule?group=g3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	got := decode(t, body)
	assert.Equal(t, "g3", got["group"])
	assert.Equal(t, false, got["isOn"])
	assert.Equal(t, "Світла немає", got["statusLabel"])
	assert.Equal(t, "1:14:30", got["countdown"])
	assert.Equal(t, "2026-10-18T11:30:00Z", got["nextChange"])
	assert.Len(t, got["entries"], 2)
}

func TestGetSchedule_DefaultGroup(t *testing.T) {
	app := newApp(t, &Handlers{})

	_, body := do(t, app, "/api/schedule")
	assert.Equal(t, "g1", decode(t, body)["group"])
}

func TestGetAlarmHistory(t *testing.T) {
	t.Run("disabled without store", func(t *testing.T) {
		app := newApp(t, &Handlers{})
		resp, _ := do(t, app, "/api/alarms/history")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("defaults to last day", func(t *testing.T) {
		store := &fakeHistory{events: []*models.AlarmEvent{{RegionID: "14", Active: true}}}
		app := newApp(t, &Handlers{History: store})

		resp, body := do(t, app, "/api/alarms/history?region=14")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "14", store.region)
		assert.Equal(t, fixedNow, store.to)
		assert.Equal(t, fixedNow.Add(-DefaultHistoryLookback), store.from)

		got := decode(t, body)
		assert.Equal(t, "14", got["region"])
		assert.Len(t, got["events"], 1)
	})

	t.Run("caps range", func(t *testing.T) {
		store := &fakeHistory{}
		app := newApp(t, &Handlers{History: store})

		resp, body := do(t, app, "/api/alarms/history?from=2026-01-01T00:00:00Z&to=2026-10-01T00:00:00Z")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		to := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, to.Equal(store.to))
		assert.True(t, to.Add(-MaxHistoryRange).Equal(store.from))
		assert.Equal(t, []any{}, decode(t, body)["events"])
	})

	t.Run("bad bounds", func(t *testing.T) {
		app := newApp(t, &Handlers{History: &fakeHistory{}})
		for _, q := range []string{"from=yesterday", "to=x", "from=2026-10-02T00:00:00Z&to=2026-10-01T00:00:00Z"} {
			resp, _ := do(t, app, "/api/alarms/history?"+q)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		}
	})

	t.Run("store error", func(t *testing.T) {
		app := newApp(t, &Handlers{History: &fakeHistory{err: errors.New("db down")}})
		resp, body := do(t, app, "/api/alarms/history")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "failed to load history", decode(t, body)["error"])
	})
}

func TestHealth(t *testing.T) {
	app := newApp(t, &Handlers{})
	resp, body := do(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, body)["status"])
}
