package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

const (
	MessageResync  = "resync"
	MessageChanged = "changed"
)

// Message is what viewers receive. Neither type carries data: clients
// reload the appointment view on every message. A resync is sent on connect
// and again whenever changes may have been missed.
type Message struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Hub serves websocket viewers of a single appointment each.
type Hub struct {
	channel  *Channel
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewHub accepts upgrades from browsers whose Origin passes originAllowed.
// Clients that send no Origin are not browsers and are let through.
func NewHub(channel *Channel, log logrus.FieldLogger, originAllowed func(origin string) bool) *Hub {
	return &Hub{
		channel: channel,
		log:     log.WithField("component", "realtime.ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(origin)
			},
		},
	}
}

// Serve upgrades the request and blocks until the viewer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, appointmentID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("appointment_id", appointmentID)

	// Bursts collapse into one pending signal of each kind.
	changed := make(chan struct{}, 1)
	resync := make(chan struct{}, 1)
	sub := h.channel.Subscribe(appointmentID, func(s Signal) {
		target := changed
		if s == SignalResync {
			target = resync
		}
		select {
		case target <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go readLoop(conn, closed)

	// Subscribing first means anything that changes after this resync is
	// also signalled.
	if err := send(conn, MessageResync); err != nil {
		return
	}
	log.Debug("viewer connected")

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Debug("viewer disconnected")
			return
		case <-resync:
			// A full reload covers any change still pending.
			select {
			case <-changed:
			default:
			}
			if err := send(conn, MessageResync); err != nil {
				return
			}
		case <-changed:
			if err := send(conn, MessageChanged); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func send(conn *websocket.Conn, kind string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Message{Type: kind, At: time.Now().UTC()})
}

// readLoop keeps pong handling alive and notices when the peer leaves.
// Viewers never send anything meaningful.
func readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(4 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
