package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gurizes/gatewarden/internal/realtime"
	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
)

func newRouterFixture(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	hub := realtime.NewHub()
	r, err := NewRouter(Services{
		Verifications: services.NewVerificationService(st, services.WithEventPublisher(hub)),
		Configs:       services.NewGuildConfigService(st),
		Stats:         services.NewStatsService(st),
		Hub:           hub,
	})
	require.NoError(t, err)
	return r
}

func TestNewRouterRequiresServices(t *testing.T) {
	_, err := NewRouter(Services{})
	require.Error(t, err)
}

func TestHealthRoute(t *testing.T) {
	r := newRouterFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsRoute(t *testing.T) {
	r := newRouterFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	r := newRouterFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRequestRoutesAreMounted(t *testing.T) {
	r := newRouterFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/guilds/guild-1/requests", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/guilds/guild-1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/guilds/guild-1/config", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsRouteStreamsLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	hub := realtime.NewHub()
	verifications := services.NewVerificationService(st, services.WithEventPublisher(hub))
	r, err := NewRouter(Services{
		Verifications: verifications,
		Configs:       services.NewGuildConfigService(st),
		Stats:         services.NewStatsService(st),
		Hub:           hub,
	})
	require.NoError(t, err)

	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/guilds/guild-1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount("guild-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	_, err = verifications.CreateRequest(context.Background(), store.CreateRequestInput{
		GuildID:          "guild-1",
		UserID:           "user-1",
		Username:         "Novato#0001",
		ReferrerID:       "referrer-1",
		ReferrerUsername: "Veterano#1111",
	})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event services.Event
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, services.EventRequestOpened, event.Type)
}
