package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gurizes/gatewarden/internal/models"
	"github.com/gurizes/gatewarden/internal/services"
)

func dialHub(t *testing.T, hub *Hub, guildID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(guildID, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, guildID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(guildID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, have %d", want, guildID, hub.ClientCount(guildID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversGuildEvents(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "guild-1")
	waitForClients(t, hub, "guild-1", 1)

	hub.Publish("guild-1", services.Event{
		Type: services.EventRequestOpened,
		Request: &models.VerificationRequest{
			GuildID:  "guild-1",
			UserID:   "user-1",
			Username: "Novato#0001",
			Status:   models.StatusPending,
		},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event services.Event
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, services.EventRequestOpened, event.Type)
	require.NotNil(t, event.Request)
	require.Equal(t, "user-1", event.Request.UserID)
}

func TestHubScopesEventsToGuild(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "guild-2")
	waitForClients(t, hub, "guild-2", 1)

	hub.Publish("guild-1", services.Event{Type: services.EventRequestOpened})
	hub.Publish("guild-2", services.Event{Type: services.EventRequestDecided})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event services.Event
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, services.EventRequestDecided, event.Type)
}

func TestHubRemovesClientOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "guild-1")
	waitForClients(t, hub, "guild-1", 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, "guild-1", 0)
}

func TestHostWithoutPort(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":    "localhost",
		"https://dash.example.com": "dash.example.com",
		"example.com:8080":         "example.com",
		"127.0.0.1":                "127.0.0.1",
	}
	for input, want := range cases {
		require.Equal(t, want, hostWithoutPort(input), input)
	}
}

func TestIsLoopback(t *testing.T) {
	require.True(t, isLoopback("localhost"))
	require.True(t, isLoopback("127.0.0.1"))
	require.False(t, isLoopback("example.com"))
	require.False(t, isLoopback("10.0.0.1"))
}
