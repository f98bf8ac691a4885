package channel

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/benkosiek/Turn-based-Game/internal/codec"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

func newPipe(t *testing.T) (*Participant, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	p := NewParticipant(NewStream(server), zaptest.NewLogger(t))
	t.Cleanup(func() {
		_ = p.Close()
		_ = client.Close()
	})
	return p, client
}

func recvWithin(t *testing.T, p *Participant, within time.Duration) (types.ClientMessage, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	return p.Recv(ctx)
}

func TestParticipantRoundTrip(t *testing.T) {
	p, client := newPipe(t)

	var g errgroup.Group
	g.Go(func() error {
		return writeMsg(client, types.PickCharacter("Voidcaster"))
	})
	msg, err := recvWithin(t, p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, types.TypePickCharacter, msg.Type)
	assert.Equal(t, "Voidcaster", msg.Choice)
	require.NoError(t, g.Wait())

	var got types.ServerMessage
	g.Go(func() error {
		frame, err := codec.NewReader(client).Next()
		if err != nil {
			return err
		}
		return codec.Decode(frame, &got)
	})
	require.NoError(t, p.Send(context.Background(), types.Welcome(7)))
	require.NoError(t, g.Wait())
	assert.Equal(t, types.Welcome(7), got)
}

func TestParticipantMalformedKeepsConnection(t *testing.T) {
	p, client := newPipe(t)

	go func() {
		_, _ = client.Write([]byte("not json\n"))
		_ = writeMsg(client, types.Act("defend", -1))
	}()

	_, err := recvWithin(t, p, time.Second)
	require.ErrorIs(t, err, ErrMalformed)

	msg, err := recvWithin(t, p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "defend", msg.Action)
	assert.Nil(t, msg.TargetIndex)
	assert.NoError(t, p.Err())
}

func TestParticipantDisconnect(t *testing.T) {
	p, client := newPipe(t)
	require.NoError(t, client.Close())

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done not closed after peer hung up")
	}
	_, err := recvWithin(t, p, time.Second)
	assert.True(t, errors.Is(err, ErrDisconnected), "got %v", err)
	assert.ErrorIs(t, p.Send(context.Background(), types.Waiting("x")), ErrDisconnected)
}

func TestParticipantRecvHonorsContext(t *testing.T) {
	p, _ := newPipe(t)

	_, err := recvWithin(t, p, 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParticipantDiscard(t *testing.T) {
	p, client := newPipe(t)

	go func() {
		for i := 0; i < 3; i++ {
			_ = writeMsg(client, types.Act("attack", i))
		}
	}()
	require.Eventually(t, func() bool { return len(p.in) == 3 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, p.Discard())
	assert.Equal(t, 0, p.Discard())
}

func TestParticipantDiscardDropsFrameBlockedOnFullQueue(t *testing.T) {
	p, client := newPipe(t)

	go func() {
		for i := 0; i <= QueueSize; i++ {
			_ = writeMsg(client, types.Act("attack", i))
		}
	}()
	// The reader has read one frame more than the queue holds and is
	// blocked handing it over.
	require.Eventually(t, func() bool { return p.seq.Load() == QueueSize+1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, QueueSize, p.Discard())
	_, err := recvWithin(t, p, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() { _ = writeMsg(client, types.Act("defend", -1)) }()
	msg, err := recvWithin(t, p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "defend", msg.Action)
}

func writeMsg(w io.Writer, v any) error {
	frame, err := codec.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}
