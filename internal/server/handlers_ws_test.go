package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/config"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWebSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/updates"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleWebSocket_ReceivesRankingUpdates(t *testing.T) {
	api := &stubAPI{entries: []domain.RankedEntry{
		{ProductID: "kb1", Rank: 1, NetScore: 5, Category: "keyboards"},
	}}
	srv := newTestServer(t, api, nil)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	conn := dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		return api.getListener() != nil
	}, time.Second, 10*time.Millisecond)

	// Simulate a flush cycle notifying the subscriber.
	api.getListener()([]string{"keyboards"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var update rankingUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	assert.Equal(t, []string{"keyboards"}, update.Categories)
	require.Len(t, update.Rankings["keyboards"], 1)
	assert.Equal(t, "kb1", update.Rankings["keyboards"][0].ProductID)
}

func TestHandleWebSocket_UnsubscribesOnDisconnect(t *testing.T) {
	api := &stubAPI{}
	srv := newTestServer(t, api, nil)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	conn := dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		return api.getListener() != nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		unsubs := api.getUnsubscribed()
		return len(unsubs) == 1 && unsubs[0] == api.subID
	}, time.Second, 10*time.Millisecond)
}

func TestHandleWebSocket_SubscriberLimit(t *testing.T) {
	api := &stubAPI{}
	cfg := &config.Config{AppEnv: "test", Port: "0", MaxSocketClients: 1}
	srv := NewServer(cfg, api, clockwork.NewRealClock(), nil)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		return api.getListener() != nil
	}, time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/updates"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleWebSocket_SlowClientEvicted(t *testing.T) {
	// Large payloads fill the socket buffer of a client that never reads,
	// which stalls the writer and overflows its send channel.
	api := &stubAPI{entries: []domain.RankedEntry{
		{ProductID: strings.Repeat("x", 1<<16), Rank: 1, NetScore: 5, Category: "keyboards"},
	}}
	srv := newTestServer(t, api, nil)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		return api.getListener() != nil
	}, time.Second, 10*time.Millisecond)

	listener := api.getListener()
	require.Eventually(t, func() bool {
		listener([]string{"keyboards"})
		return len(api.getUnsubscribed()) == 1
	}, 5*time.Second, 10*time.Millisecond)
}
