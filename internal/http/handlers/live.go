package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"server/internal/broadcast"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsPongWait   = 60 * time.Second
)

// Live upgrades the connection and streams confirmed-donation events to the
// viewer. There is no backlog: the session only sees events published while
// it is connected.
func (a *App) Live(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.allowWSOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := a.Hub.Subscribe()
	go a.writeViewer(conn, sub)
	a.readViewer(conn, sub)
}

// allowWSOrigin mirrors the CORS allowlist. An empty allowlist leaves the
// endpoint open, which is the development default.
func (a *App) allowWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(a.Cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range a.Cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// readViewer drains the connection until the viewer goes away, then tears the
// session down. Viewers are not expected to send anything meaningful.
func (a *App) readViewer(conn *websocket.Conn, sub *broadcast.Subscriber) {
	defer func() {
		a.Hub.Unsubscribe(sub)
		_ = conn.Close()
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeViewer forwards hub messages to the connection in FIFO order and keeps
// the connection alive with pings. A write failure ends the session; delivery
// is best-effort.
func (a *App) writeViewer(conn *websocket.Conn, sub *broadcast.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
