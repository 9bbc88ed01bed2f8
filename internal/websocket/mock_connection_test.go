package websocket

import (
	"errors"
	"sync"
	"time"
)

var errClosed = errors.New("connection closed")

type frame struct {
	messageType int
	data        []byte
}

// mockConnection records written frames; ReadMessage blocks until Close.
type mockConnection struct {
	mu      sync.Mutex
	written []frame
	closed  bool
	closeCh chan struct{}
	writeCh chan frame
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		closeCh: make(chan struct{}),
		writeCh: make(chan frame, 16),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	f := frame{messageType: messageType, data: append([]byte(nil), data...)}
	m.written = append(m.written, f)
	select {
	case m.writeCh <- f:
	default:
	}
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	<-m.closeCh
	return 0, nil, errClosed
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.closeCh)
	}
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) SetReadLimit(int64)               {}
func (m *mockConnection) SetPongHandler(func(string) error) {}
func (m *mockConnection) RemoteAddr() string               { return "127.0.0.1:5555" }

func (m *mockConnection) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
