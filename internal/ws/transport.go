// Package ws carries the session protocol over websocket, one JSON message
// per text frame.
package ws

import (
	"bytes"
	"context"

	"github.com/coder/websocket"

	"github.com/benkosiek/Turn-based-Game/internal/codec"
)

// Transport adapts a websocket connection to channel.Transport.
type Transport struct {
	conn *websocket.Conn
}

func NewTransport(conn *websocket.Conn) *Transport {
	conn.SetReadLimit(codec.MaxFrame)
	return &Transport{conn: conn}
}

func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteFrame sends frame without its trailing newline.
func (t *Transport) WriteFrame(ctx context.Context, frame []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, bytes.TrimSuffix(frame, []byte("\n")))
}

func (t *Transport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "bye")
}
