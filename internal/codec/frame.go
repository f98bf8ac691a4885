// Package codec frames, encodes and projects the messages exchanged with
// participants. One message is one JSON object followed by '\n'.
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

var ErrFrameTooLarge = errors.New("frame exceeds size limit")
var ErrMissingType = errors.New("message has no type")

// MaxFrame bounds a single inbound line.
const MaxFrame = 64 << 10

// Encode marshals v and appends the delimiter.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode unmarshals one frame, ignoring surrounding whitespace.
func Decode(frame []byte, v any) error {
	if err := json.Unmarshal(bytes.TrimSpace(frame), v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}

// DecodeClient decodes a participant message and requires a type.
func DecodeClient(frame []byte) (types.ClientMessage, error) {
	var m types.ClientMessage
	if err := Decode(frame, &m); err != nil {
		return types.ClientMessage{}, err
	}
	if m.Type == "" {
		return types.ClientMessage{}, ErrMissingType
	}
	return m, nil
}

// Reader splits a byte stream into frames, buffering across reads until a
// delimiter arrives.
type Reader struct {
	br  *bufio.Reader
	max int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), max: MaxFrame}
}

// Next returns the next non-empty frame without its delimiter. A stream
// that ends mid-frame yields io.ErrUnexpectedEOF.
func (r *Reader) Next() ([]byte, error) {
	for {
		var frame []byte
		for {
			chunk, err := r.br.ReadSlice('\n')
			if len(frame)+len(chunk) > r.max {
				return nil, ErrFrameTooLarge
			}
			frame = append(frame, chunk...)
			if err == nil {
				break
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			if errors.Is(err, io.EOF) && len(bytes.TrimSpace(frame)) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		frame = bytes.TrimSpace(frame)
		if len(frame) > 0 {
			return frame, nil
		}
	}
}
