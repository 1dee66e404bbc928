package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dinehub/restaurant-portal/restaurant-portal-backend/internal/onboarding"
)

// ProgressMessage is the payload pushed to dashboard clients whenever a
// session advances or reverts.
type ProgressMessage struct {
	Type      string              `json:"type"`
	SessionID uuid.UUID           `json:"session_id"`
	Progress  onboarding.Progress `json:"progress"`
	Timestamp time.Time           `json:"timestamp"`
}

// Connection represents one dashboard client
type Connection struct {
	ID     uuid.UUID
	UserID uuid.UUID
	conn   *websocket.Conn
	send   chan ProgressMessage
}

// Manager tracks dashboard connections per user and broadcasts onboarding
// progress updates to them. It satisfies onboarding.ProgressBroadcaster.
type Manager struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]map[*Connection]bool
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewManager creates a new progress push manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin is enforced upstream by the API gateway.
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the request and registers the client for the
// given user's progress updates.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Connection{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan ProgressMessage, 16),
	}

	m.mu.Lock()
	if m.connections[userID] == nil {
		m.connections[userID] = make(map[*Connection]bool)
	}
	m.connections[userID][c] = true
	m.mu.Unlock()

	m.logger.Debug("Progress subscriber connected",
		zap.String("connection_id", c.ID.String()),
		zap.String("user_id", userID.String()))

	go m.writePump(c)
	go m.readPump(c)
	return nil
}

// PublishProgress sends a progress update to every connection of the user.
// Slow consumers are dropped rather than blocking navigation.
func (m *Manager) PublishProgress(userID uuid.UUID, sessionID uuid.UUID, progress onboarding.Progress) {
	msg := ProgressMessage{
		Type:      "onboarding_progress",
		SessionID: sessionID,
		Progress:  progress,
		Timestamp: time.Now(),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.connections[userID] {
		select {
		case c.send <- msg:
		default:
			m.logger.Warn("Dropping slow progress subscriber",
				zap.String("connection_id", c.ID.String()))
		}
	}
}

func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	if conns, ok := m.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	m.mu.Unlock()
	c.conn.Close()
}

// readPump drains client frames; clients only send pongs and close frames.
func (m *Manager) readPump(c *Connection) {
	defer m.unregister(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("Progress subscriber read error", zap.Error(err))
			}
			return
		}
	}
}

func (m *Manager) writePump(c *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
