package handlers

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWebSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	header := http.Header{"Origin": []string{"http://localhost:3000"}}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return conn
}

func TestWebSocketRegistersAndUnregistersClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/ws", fakeAuth(7), WebSocket)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWebSocket(t, srv)
	defer conn.Close()

	var welcome map[string]string
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome["type"])

	userClientsMu.RLock()
	registered := len(userClients[7])
	userClientsMu.RUnlock()
	assert.Equal(t, 1, registered)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		userClientsMu.RLock()
		defer userClientsMu.RUnlock()
		_, exists := userClients[7]
		return !exists
	}, 3*time.Second, 10*time.Millisecond, "connection should be unregistered after close")
}

func TestWebSocketShutdownReleasesGoroutines(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/ws", fakeAuth(8), WebSocket)

	srv := httptest.NewServer(r)
	defer srv.Close()

	baseline := runtime.NumGoroutine()

	conn := dialWebSocket(t, srv)

	var welcome map[string]string
	require.NoError(t, conn.ReadJSON(&welcome))

	require.NoError(t, conn.Close())

	// The read loop, the ping goroutine and the dialer's goroutines must all
	// exit once the connection is gone. Poll from this goroutine rather than
	// require.Eventually: the latter runs the condition in a fresh goroutine,
	// which keeps the count above baseline while it is being measured.
	deadline := time.Now().Add(3 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines should return to baseline after disconnect: baseline=%d now=%d", baseline, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
