package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid")
}

func startManager(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	m := NewManager(log)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	srv := httptest.NewServer(m.ServeWS(staticVerifier{"good": "user-1"}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return m, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
}

func TestServeWSRejectsBadToken(t *testing.T) {
	_, srv := startManager(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "bad"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBroadcastReachesClient(t *testing.T) {
	m, srv := startManager(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome Event
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome.Type)

	require.Eventually(t, func() bool { return m.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	m.Broadcast("post_created", map[string]string{"_id": "p1"})

	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "post_created", got.Type)
	assert.Equal(t, map[string]interface{}{"_id": "p1"}, got.Payload)
}

func TestPingGetsPong(t *testing.T) {
	m, srv := startManager(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome Event
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Eventually(t, func() bool { return m.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	var pong Event
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)
}
