package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/pkg/ledger"
)

// ServerMsg é o envelope enviado aos clientes
type ServerMsg struct {
	Type    string          `json:"type"` // "summary" | "pong"
	Summary *ledger.Summary `json:"summary,omitempty"`
}

// ClientMsg é o que o cliente pode mandar: apenas ping
type ClientMsg struct {
	Type string `json:"type"`
}

// Hub mantém as conexões abertas e distribui o resumo do ledger a cada mutação
type Hub struct {
	Log *zap.Logger

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	conns    map[*websocket.Conn]*sync.Mutex // mutex de escrita por conexão

	// Snapshot envia o resumo atual logo após o handshake
	Snapshot func() ledger.Summary

	OnConnect    func() // métricas
	OnDisconnect func() // métricas
}

// NewHub cria o Hub com política de origem customizada (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		Log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		conns:    make(map[*websocket.Conn]*sync.Mutex),
	}
}

// HandleWS registra a conexão, manda o snapshot e responde pings até o cliente sair
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	wmu := &sync.Mutex{}
	h.mu.Lock()
	h.conns[conn] = wmu
	h.mu.Unlock()
	if h.OnConnect != nil {
		h.OnConnect()
	}

	if h.Snapshot != nil {
		s := h.Snapshot()
		_ = write(conn, wmu, ServerMsg{Type: "summary", Summary: &s})
	}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			_ = write(conn, wmu, ServerMsg{Type: "pong"})
		}
	}

	// Remove a conexão ao desconectar
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
}

// Broadcast envia o resumo atualizado a todos os clientes conectados
func (h *Hub) Broadcast(s ledger.Summary) {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for c, m := range h.conns {
		targets[c] = m
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	for c, m := range targets {
		if err := write(c, m, ServerMsg{Type: "summary", Summary: &s}); err != nil {
			h.Log.Debug("ws write failed", zap.Error(err))
		}
	}
}

// Clients retorna quantas conexões estão abertas
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// write serializa escritas por conexão (gorilla não aceita escritores concorrentes)
func write(c *websocket.Conn, m *sync.Mutex, msg ServerMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.WriteMessage(websocket.TextMessage, b)
}
