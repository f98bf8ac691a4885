package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/channel"
	"github.com/benkosiek/Turn-based-Game/internal/lobby"
)

// Handler upgrades the request and hands the participant to the lobby. It
// returns once the participant is gone.
func Handler(lb *lobby.Lobby, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// nil options keep the library's same-origin check.
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		plog := log.With(zap.String("remote", r.RemoteAddr), zap.String("transport", "ws"))
		p := channel.NewParticipant(NewTransport(conn), plog)
		if !lb.Submit(r.Context(), lobby.Join{Conn: p}) {
			_ = p.Close()
			return
		}

		<-p.Done()
		plog.Debug("websocket participant gone", zap.Error(p.Err()))
	}
}
