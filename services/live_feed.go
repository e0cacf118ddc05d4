package services

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	ws "github.com/krshsl/mulakat/backend/websocket"
)

// LiveFeed upgrades owner connections and subscribes them to an interview.
type LiveFeed struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewLiveFeed(hub *ws.Hub, allowedOrigins string) *LiveFeed {
	return &LiveFeed{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, allowedOrigins)
			},
		},
	}
}

// Serve blocks until the listener disconnects.
func (f *LiveFeed) Serve(w http.ResponseWriter, r *http.Request, uniqueURL, companyID string) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err, "interview_url", uniqueURL)
		return
	}

	slog.Info("Live connection established", "interview_url", uniqueURL, "company_id", companyID)
	client := f.hub.RegisterClient(conn, uniqueURL, companyID)

	go client.WritePump()
	client.ReadPump()
}
