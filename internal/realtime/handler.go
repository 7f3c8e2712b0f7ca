package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer; the upgrade accepts any origin here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and attaches it
// to the hub. Authentication happens afterwards over the socket itself.
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return err
		}

		client := newClient(hub, conn)
		hub.register(client)
		client.sendEvent("welcome", "Hello "+client.id)

		go client.writePump()
		go client.readPump()
		return nil
	}
}
