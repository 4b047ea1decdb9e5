package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trademind/internal/services/market"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// handleMarketWS handles GET /api/market/ws/{ticker} — streams the market
// snapshot for one ticker at the configured poll interval until the client
// disconnects. Public, like the REST snapshot endpoint.
func (s *Server) handleMarketWS(w http.ResponseWriter, r *http.Request) {
	ticker := market.NormalizeTicker(PathParam(r, "/api/market/ws/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.logger.Debug().Str("ticker", ticker).Msg("WebSocket client connected")

	done := make(chan struct{})
	go s.wsReadPump(conn, done)
	s.wsWritePump(r, conn, ticker, done)
}

// wsReadPump drains the connection to detect close and keep pong handling
// alive. Inbound messages are ignored.
func (s *Server) wsReadPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsWritePump pushes a snapshot immediately, then on every poll tick, with
// periodic pings in between.
func (s *Server) wsWritePump(r *http.Request, conn *websocket.Conn, ticker string, done chan struct{}) {
	interval := s.app.Config.Market.GetPollInterval()
	poll := time.NewTicker(interval)
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		poll.Stop()
		ping.Stop()
		conn.Close()
	}()

	send := func() bool {
		snapshot, err := s.app.MarketService.GetSnapshot(r.Context(), ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Snapshot failed, skipping push")
			return true
		}
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(snapshot) == nil
	}

	if !send() {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-poll.C:
			if !send() {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
