// Package channel turns a framed transport into a participant endpoint with
// a blocking "read next message" contract.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/codec"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

var ErrDisconnected = errors.New("participant disconnected")
var ErrMalformed = errors.New("malformed message")

// Transport moves whole frames. Implementations must unblock ReadFrame when
// Close is called.
type Transport interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteFrame(ctx context.Context, frame []byte) error
	Close() error
}

type inbound struct {
	seq uint64
	msg types.ClientMessage
	err error
}

// Participant owns one connection. A reader goroutine feeds decoded messages
// into a queue with a single consumer; writes are serialized.
type Participant struct {
	t   Transport
	log *zap.Logger

	in     chan inbound
	seq    atomic.Uint64 // frames read so far
	cutoff atomic.Uint64 // frames at or below this seq are stale
	done   chan struct{}
	once   sync.Once
	err    error
	cancel context.CancelFunc

	wmu sync.Mutex
}

// QueueSize bounds messages read ahead of the consumer.
const QueueSize = 16

func NewParticipant(t Transport, log *zap.Logger) *Participant {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Participant{
		t:      t,
		log:    log,
		in:     make(chan inbound, QueueSize),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go p.readLoop(ctx)
	return p
}

func (p *Participant) readLoop(ctx context.Context) {
	for {
		frame, err := p.t.ReadFrame(ctx)
		if err != nil {
			p.fail(fmt.Errorf("%w: %v", ErrDisconnected, err))
			return
		}
		seq := p.seq.Add(1)
		msg, err := codec.DecodeClient(frame)
		if err != nil {
			p.log.Debug("malformed frame", zap.Error(err))
			err = fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		select {
		case p.in <- inbound{seq: seq, msg: msg, err: err}:
		case <-p.done:
			return
		}
	}
}

func (p *Participant) fail(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Recv blocks for the next message. Messages read before a disconnect are
// still delivered; after that Recv returns an ErrDisconnected error.
// A decode failure is returned as ErrMalformed and the connection stays up.
// Messages read before the last Discard are skipped.
func (p *Participant) Recv(ctx context.Context) (types.ClientMessage, error) {
	for {
		in, err := p.next(ctx)
		if err != nil {
			return types.ClientMessage{}, err
		}
		if in.seq <= p.cutoff.Load() {
			continue
		}
		return in.msg, in.err
	}
}

func (p *Participant) next(ctx context.Context) (inbound, error) {
	select {
	case in := <-p.in:
		return in, nil
	default:
	}
	select {
	case in := <-p.in:
		return in, nil
	case <-p.done:
		select {
		case in := <-p.in:
			return in, nil
		default:
		}
		return inbound{}, p.err
	case <-ctx.Done():
		return inbound{}, ctx.Err()
	}
}

// Discard drops every queued message without blocking and reports how many.
// A frame the reader goroutine had already read but not yet queued is also
// dropped when it arrives.
func (p *Participant) Discard() int {
	p.cutoff.Store(p.seq.Load())
	n := 0
	for {
		select {
		case <-p.in:
			n++
		default:
			return n
		}
	}
}

func (p *Participant) Send(ctx context.Context, msg types.ServerMessage) error {
	select {
	case <-p.done:
		return p.err
	default:
	}
	frame, err := codec.Encode(msg)
	if err != nil {
		return err
	}
	p.wmu.Lock()
	defer p.wmu.Unlock()
	if err := p.t.WriteFrame(ctx, frame); err != nil {
		err = fmt.Errorf("%w: %v", ErrDisconnected, err)
		p.fail(err)
		return err
	}
	return nil
}

// Done is closed once the connection has failed or been closed.
func (p *Participant) Done() <-chan struct{} { return p.done }

// Err reports why Done was closed.
func (p *Participant) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *Participant) Close() error {
	p.fail(fmt.Errorf("%w: closed", ErrDisconnected))
	p.cancel()
	return p.t.Close()
}
