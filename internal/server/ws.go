package server

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const subscriberBuffer = 32

// activityStream pushes every new activity event to the client as a JSON text message.
func (s *Server) activityStream(w http.ResponseWriter, r *http.Request) {
	// subscribe before the handshake completes so no event emitted after it is missed
	events, unsubscribe := s.assistant.Feed().Subscribe(subscriberBuffer)
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		s.logger.Warn("failed to accept websocket", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream ended")

	// the client never sends anything; CloseRead handles pings and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	s.logger.Debug("activity stream opened", zap.String("remote", r.RemoteAddr))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("activity stream closed", zap.Error(ctx.Err()))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, event); err != nil {
				if !errors.Is(err, ctx.Err()) {
					s.logger.Debug("activity stream write failed", zap.Error(err))
				}
				return
			}
		}
	}
}
