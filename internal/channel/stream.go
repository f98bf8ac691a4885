package channel

import (
	"context"
	"net"

	"github.com/benkosiek/Turn-based-Game/internal/codec"
)

// Stream is a Transport over a reliable byte stream using newline framing.
type Stream struct {
	conn net.Conn
	r    *codec.Reader
}

func NewStream(conn net.Conn) *Stream {
	return &Stream{conn: conn, r: codec.NewReader(conn)}
}

func (s *Stream) ReadFrame(ctx context.Context) ([]byte, error) {
	d, _ := ctx.Deadline()
	if err := s.conn.SetReadDeadline(d); err != nil {
		return nil, err
	}
	return s.r.Next()
}

func (s *Stream) WriteFrame(ctx context.Context, frame []byte) error {
	d, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(d); err != nil {
		return err
	}
	_, err := s.conn.Write(frame)
	return err
}

func (s *Stream) Close() error { return s.conn.Close() }

func (s *Stream) RemoteAddr() string { return s.conn.RemoteAddr().String() }
