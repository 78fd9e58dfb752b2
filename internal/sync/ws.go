package sync

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the bookmarklet connects from arbitrary storefront origins, so the
	// socket cannot pin one; auth lives on the API surface instead
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler attaches a browser client to the hub for library events. The
// stream is server-to-client only; inbound frames are drained and ignored.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(ws)
		hub.WelcomeWS(ws)
		log.Printf("[ws-sync] client connected: %s", c.ClientIP())

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Printf("[ws-sync] client disconnected: %s", c.ClientIP())
	}
}
