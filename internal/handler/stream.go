package handler

import (
	"net/http"
	"time"

	"btc-dashboard/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	streamWriteWait  = 5 * time.Second
	streamPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamTicker godoc
// @Summary      Stream ticker updates
// @Description  Upgrades to a WebSocket and pushes one ticker message per simulated tick
// @Tags         ticker
// @Security     ApiKeyAuth
// @Router       /api/ticker/stream [get]
func (h *Handler) StreamTicker(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticks := make(chan domain.TickerState, 4)
	cancel := h.dashboard.Subscribe(func(ts domain.TickerState) {
		select {
		case ticks <- ts:
		default:
		}
	})
	defer cancel()

	// the read side only exists to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case ts := <-ticks:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(domain.NewTickerSnapshot(ts)); err != nil {
				log.Debug().Err(err).Msg("ticker stream closed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
