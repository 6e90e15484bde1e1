package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"roguie-server/internal/engine"
	"roguie-server/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Шаг симуляции; им же меряется время жизни частиц.
	tickInterval = 50 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - одна игровая сессия: соединение и собственный экземпляр
// движка. Движок однопоточный, им владеет цикл run; пампы только
// передают команды и кадры.
type Client struct {
	game     *engine.Game
	conn     *websocket.Conn
	send     chan Frame
	commands chan engine.Command
	closed   chan struct{}
}

func NewClient(game *engine.Game, conn *websocket.Conn) *Client {
	return &Client{
		game:     game,
		conn:     conn,
		send:     make(chan Frame, 64),
		commands: make(chan engine.Command, 64),
		closed:   make(chan struct{}),
	}
}

// run крутит сессию: команды уходят в движок, каждый тик наружу
// уезжает свежий кадр.
func (c *Client) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case cmd := <-c.commands:
			c.game.ProcessCommand(cmd)
		case <-ticker.C:
			c.game.Tick(float64(tickInterval.Milliseconds()))
			select {
			case c.send <- buildFrame(c.game):
			default:
				// Клиент не успевает; кадр пропускается, следующий
				// тик пришлет актуальный.
			}
		}
	}
}

// readPump читает команды от клиента.
func (c *Client) readPump() {
	defer func() {
		close(c.closed)
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close after read pump failed")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		var cmd engine.Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Error("websocket read failed")
			}
			return
		}
		select {
		case c.commands <- cmd:
		case <-c.closed:
			return
		}
	}
}

// writePump отправляет кадры клиенту и пингует соединение.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close after write pump failed")
		}
	}()

	for {
		select {
		case <-c.closed:
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				logger.Log.WithError(err).Debug("write close message failed")
			}
			return
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				logger.Log.WithError(err).Debug("write frame failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
