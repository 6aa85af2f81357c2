package bridge

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicEngine struct{}

func (panicEngine) Propagate(*PhotonBatch, PropagateOptions) ([]ChannelHits, error) {
	panic("engine blew up")
}

func TestHandleRequest_EmptyBatch(t *testing.T) {
	// numPhotons=0, eventId=5: a valid request that must come back as a
	// normal reply with zero hits and the event id echoed.
	server := NewServer(&mockEngine{events: []ChannelHits{{}}})
	request, err := EncodeRequest(makeEvent(0, 5))
	require.NoError(t, err)

	reply, err := DecodeReply(server.HandleRequest(request))
	require.NoError(t, err)
	assert.Equal(t, uint32(5), reply.EventID)
	assert.Equal(t, 0, reply.Photons.NumPhotons())
	assert.Empty(t, reply.ChannelIDs)
	assert.Empty(t, reply.TrackIDs)
}

func TestHandleRequest_AggregatedReply(t *testing.T) {
	engine := &mockEngine{events: []ChannelHits{{
		3: makeHitBatch(2, 30),
		1: makeHitBatch(1, 10),
	}}}
	server := NewServer(engine)
	request, err := EncodeRequest(makeEvent(3, 21))
	require.NoError(t, err)

	reply, err := DecodeReply(server.HandleRequest(request))
	require.NoError(t, err)
	assert.Equal(t, uint32(21), reply.EventID)
	assert.Equal(t, 3, reply.Photons.NumPhotons())
	assert.Equal(t, []uint32{1, 3, 3}, reply.ChannelIDs)
	assert.Equal(t, reply.ChannelIDs, reply.TrackIDs)
}

func TestHandleRequest_MalformedRequest(t *testing.T) {
	engine := &mockEngine{events: []ChannelHits{{}}}
	server := NewServer(engine)
	request, err := EncodeRequest(makeEvent(2, 9))
	require.NoError(t, err)

	var remote *ErrRemote
	_, err = DecodeReply(server.HandleRequest(request[:len(request)-1]))
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint32(9), remote.EventID)
	// The engine must never see a request that failed to decode.
	assert.Equal(t, 0, engine.calls)
}

func TestHandleRequest_EngineFailure(t *testing.T) {
	server := NewServer(&mockEngine{err: fmt.Errorf("context dead")})
	request, err := EncodeRequest(makeEvent(1, 14))
	require.NoError(t, err)

	var remote *ErrRemote
	_, err = DecodeReply(server.HandleRequest(request))
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint32(14), remote.EventID)
}

func TestHandleRequest_PanicConfined(t *testing.T) {
	server := NewServer(panicEngine{})
	request, err := EncodeRequest(makeEvent(1, 6))
	require.NoError(t, err)

	var remote *ErrRemote
	_, err = DecodeReply(server.HandleRequest(request))
	assert.ErrorAs(t, err, &remote)

	// The loop must stay serviceable after a panic.
	_, err = DecodeReply(server.HandleRequest(request))
	assert.ErrorAs(t, err, &remote)
}

func TestServerClientRoundTrip(t *testing.T) {
	engine := &mockEngine{events: []ChannelHits{{
		2: makeHitBatch(1, 20),
	}}}
	server := NewServer(engine)
	require.NoError(t, server.Listen("tcp://127.0.0.1:0"))
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- server.Serve() }()

	client, err := Dial(fmt.Sprintf("tcp://%s", server.Addr()))
	require.NoError(t, err)
	defer client.Close()

	// Two sequential requests through the same exchange.
	for _, eventID := range []uint32{1, 2} {
		reply, err := client.Simulate(makeEvent(2, eventID))
		require.NoError(t, err)
		assert.Equal(t, eventID, reply.EventID)
		assert.Equal(t, []uint32{2}, reply.ChannelIDs)
	}

	server.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after Close")
	}
}
