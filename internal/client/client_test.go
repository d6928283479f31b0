package client

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomoku-backend/pkg/proto"
)

type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errors.New("not used")
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	if messageType == websocket.TextMessage {
		f.writes = append(f.writes, data)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.writes...)
}

func TestIdentityDefaults(t *testing.T) {
	c := New("c1", &fakeConn{})

	assert.Equal(t, "Anonymous", c.Name())

	c.SetIdentity("sid-1", "")
	assert.Equal(t, "sid-1", c.SessionID())
	assert.Equal(t, "Anonymous", c.Name(), "an empty name keeps the default")

	c.SetIdentity("sid-1", "Alice")
	assert.Equal(t, "Alice", c.Name())
}

func TestNotifyPreservesOrder(t *testing.T) {
	conn := &fakeConn{}
	c := New("c1", conn)

	c.Notify(&proto.ServerToClientMessage{Type: proto.TypeWait})
	c.Notify(proto.Move(3, 4, 1))
	c.Notify(proto.Win(1))

	go c.WritePump()

	require.Eventually(t, func() bool {
		return len(conn.written()) == 3
	}, time.Second, 5*time.Millisecond)

	var types []string
	for _, data := range conn.written() {
		var msg proto.ServerToClientMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{proto.TypeWait, proto.TypeMove, proto.TypeWin}, types)
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	conn := &fakeConn{}
	c := New("c1", conn)

	assert.True(t, c.Open())
	c.Close()
	assert.False(t, c.Open())

	// Must not block or panic; the peer is simply gone.
	c.Notify(proto.Win(2))
	assert.Empty(t, conn.written())
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New("c1", &fakeConn{})
	c.Close()
	c.Close()
	assert.False(t, c.Open())
}
