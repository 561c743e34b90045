package slotline

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamMessage struct {
	RunID string    `json:"run_id"`
	Event TickEvent `json:"event"`
}

// StreamServer broadcasts tick snapshots to websocket clients, replacing in-simulator
// POI rendering with an external live view
type StreamServer struct {
	runID        string
	clients      map[*websocket.Conn]bool
	clientsMutex sync.Mutex
	log          logrus.FieldLogger
}

func NewStreamServer(log logrus.FieldLogger) *StreamServer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StreamServer{
		runID:   uuid.NewString(),
		clients: make(map[*websocket.Conn]bool),
		log:     log,
	}
}

// RunID identifies this simulation run across reconnects
func (server *StreamServer) RunID() string {
	return server.runID
}

// ServeHTTP upgrades the connection and keeps it registered until it breaks
func (server *StreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	server.clientsMutex.Lock()
	server.clients[conn] = true
	server.clientsMutex.Unlock()
	server.log.WithField("remote", conn.RemoteAddr().String()).Info("stream client connected")
}

// Broadcast pushes the tick event to every connected client, dropping the ones whose
// connection broke
func (server *StreamServer) Broadcast(event TickEvent) {
	message := streamMessage{RunID: server.runID, Event: event}

	server.clientsMutex.Lock()
	defer server.clientsMutex.Unlock()
	for conn := range server.clients {
		if err := conn.WriteJSON(message); err != nil {
			server.log.WithError(err).Debug("dropping stream client")
			conn.Close()
			delete(server.clients, conn)
		}
	}
}
