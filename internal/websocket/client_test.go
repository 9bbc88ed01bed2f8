package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labordash/internal/config"
	"labordash/pkg/contracts/events"
)

func TestClientConfigFrom(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.WebSocketConfig
		wantPing time.Duration
		wantPong time.Duration
	}{
		{
			name:     "configured",
			cfg:      config.WebSocketConfig{PingPeriod: 10 * time.Second, PongWait: 20 * time.Second},
			wantPing: 10 * time.Second,
			wantPong: 20 * time.Second,
		},
		{
			name:     "zero values use defaults",
			cfg:      config.WebSocketConfig{},
			wantPing: (config.WebSocketPongWait * 9) / 10,
			wantPong: config.WebSocketPongWait,
		},
		{
			name:     "ping not shorter than pong",
			cfg:      config.WebSocketConfig{PingPeriod: 30 * time.Second, PongWait: 10 * time.Second},
			wantPing: 9 * time.Second,
			wantPong: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClientConfigFrom(tt.cfg)
			assert.Equal(t, tt.wantPing, got.PingPeriod)
			assert.Equal(t, tt.wantPong, got.PongWait)
		})
	}
}

func TestClientPumps(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	hub.Start()
	defer hub.Stop()

	conn := newMockConnection()
	client := NewClient(hub, conn, testClientConfig, "", discardLogger())
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	first := <-conn.writeCh
	assert.Equal(t, websocket.TextMessage, first.messageType)

	hub.Broadcast(events.NewDatasetMessage(events.MessageTypeDatasetReloaded, events.DatasetChange{Reason: "watcher"}))

	select {
	case f := <-conn.writeCh:
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(f.data, &msg))
		assert.Equal(t, events.MessageTypeDatasetReloaded, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast not written")
	}

	// closing the connection ends the read pump which unregisters the client
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClientPingsOnTicker(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	hub.Start()
	defer hub.Stop()

	conn := newMockConnection()
	client := NewClient(hub, conn, ClientConfig{PingPeriod: 20 * time.Millisecond, PongWait: time.Second}, "", discardLogger())

	go client.WritePump()
	defer close(client.send)

	select {
	case f := <-conn.writeCh:
		assert.Equal(t, websocket.PingMessage, f.messageType)
	case <-time.After(2 * time.Second):
		t.Fatal("no ping written")
	}
}
