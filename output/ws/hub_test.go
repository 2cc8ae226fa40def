package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/obstacle"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/ws"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

type frameMessage struct {
	Type  string       `json:"type"`
	Frame entity.Frame `json:"frame"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frameMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg frameMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubBroadcast(t *testing.T) {
	q := obstacle.NewQueue()
	hub := ws.NewHub(q)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Render(entity.Frame{Step: 1})
	a := dial(t, srv)
	// newcomers get the latest frame first
	assert.EqualValues(t, 1, readFrame(t, a).Frame.Step)

	b := dial(t, srv)
	readFrame(t, b)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	hub.Render(entity.Frame{Step: 2, State: entity.AgentState_ALERTED, Alert: true, Cell: entity.Cell{X: 3, Y: 4}})
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readFrame(t, conn)
		assert.Equal(t, "frame", msg.Type)
		assert.EqualValues(t, 2, msg.Frame.Step)
		assert.True(t, msg.Frame.Alert)
		assert.Equal(t, entity.Cell{X: 3, Y: 4}, msg.Frame.Cell)
	}
	require.NoError(t, hub.Close())
}

func TestHubToggle(t *testing.T) {
	q := obstacle.NewQueue()
	hub := ws.NewHub(q)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"toggle":{"x":2,"y":1}}`)))
	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, 5*time.Millisecond)

	g := grid.NewOpen(4, 4)
	assert.Equal(t, []entity.Cell{{X: 2, Y: 1}}, q.Drain(g))
}
