package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeEvent builds a request event with distinct values in every attribute
// slot so that round trips catch any block ordering mistake.
func makeEvent(n int, eventID uint32) *Event {
	event := &Event{
		EventID:  eventID,
		Photons:  NewPhotonBatch(n),
		TrackIDs: make([]uint32, n),
	}
	for k, attr := range event.Photons.attributes() {
		for i := 0; i < n; i++ {
			(*attr)[i] = float64(k*10000+i) + 0.25
		}
	}
	for i := 0; i < n; i++ {
		event.TrackIDs[i] = uint32(100 + i)
	}
	return event
}

func TestRequestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 1000} {
		event := makeEvent(n, 42)
		data, err := EncodeRequest(event)
		require.NoError(t, err)
		assert.Equal(t, headerSize+n*requestPhotonSize, len(data))

		decoded, err := DecodeRequest(data)
		require.NoError(t, err)
		assert.Equal(t, uint32(42), decoded.EventID)
		assert.Equal(t, n, decoded.Photons.NumPhotons())
		assert.Equal(t, event.Photons, decoded.Photons)
		assert.Equal(t, event.TrackIDs, decoded.TrackIDs)
	}
}

func TestDecodeRequest_EmptyBatch(t *testing.T) {
	data, err := EncodeRequest(makeEvent(0, 5))
	require.NoError(t, err)
	require.Equal(t, headerSize, len(data))

	event, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), event.EventID)
	assert.Equal(t, 0, event.Photons.NumPhotons())
	assert.Empty(t, event.TrackIDs)
}

func TestDecodeRequest_Truncated(t *testing.T) {
	data, err := EncodeRequest(makeEvent(3, 7))
	require.NoError(t, err)

	var malformed *ErrMalformedMessage
	_, err = DecodeRequest(data[:len(data)-1])
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, len(data)-1, malformed.Length)
	assert.Equal(t, len(data), malformed.Expected)
}

func TestDecodeRequest_TrailingBytes(t *testing.T) {
	data, err := EncodeRequest(makeEvent(3, 7))
	require.NoError(t, err)

	var malformed *ErrMalformedMessage
	_, err = DecodeRequest(append(data, 0x00))
	assert.ErrorAs(t, err, &malformed)
}

func TestDecodeRequest_ShortHeader(t *testing.T) {
	for n := 0; n < headerSize; n++ {
		var malformed *ErrMalformedMessage
		_, err := DecodeRequest(make([]byte, n))
		assert.ErrorAs(t, err, &malformed)
	}
}

func TestDecodeRequest_HeaderOverclaims(t *testing.T) {
	// Header announces far more photons than the buffer holds; the decoder
	// must reject on length alone, before touching attribute data.
	data, err := EncodeRequest(makeEvent(2, 1))
	require.NoError(t, err)
	data[0] = 0xFF
	data[1] = 0xFF
	data[2] = 0xFF
	data[3] = 0x7F

	var malformed *ErrMalformedMessage
	_, err = DecodeRequest(data)
	assert.ErrorAs(t, err, &malformed)
}

func makeAggregated(n int, eventID uint32) *AggregatedHits {
	hits := &AggregatedHits{
		EventID:    eventID,
		Photons:    NewPhotonBatch(n),
		ChannelIDs: make([]uint32, n),
		TrackIDs:   make([]uint32, n),
	}
	for k, attr := range hits.Photons.attributes() {
		for i := 0; i < n; i++ {
			(*attr)[i] = float64(k*10000+i) + 0.75
		}
	}
	for i := 0; i < n; i++ {
		hits.ChannelIDs[i] = uint32(i / 2)
		hits.TrackIDs[i] = uint32(i / 2)
	}
	return hits
}

func TestReplyRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 500} {
		hits := makeAggregated(n, 9)
		data, err := EncodeReply(hits)
		require.NoError(t, err)
		assert.Equal(t, headerSize+n*replyPhotonSize, len(data))

		decoded, err := DecodeReply(data)
		require.NoError(t, err)
		assert.Equal(t, hits, decoded)
	}
}

func TestDecodeReply_Truncated(t *testing.T) {
	data, err := EncodeReply(makeAggregated(4, 3))
	require.NoError(t, err)

	var malformed *ErrMalformedMessage
	_, err = DecodeReply(data[:len(data)-1])
	assert.ErrorAs(t, err, &malformed)
}

func TestEncodeReply_MismatchedChannelIDs(t *testing.T) {
	hits := makeAggregated(4, 3)
	hits.ChannelIDs = hits.ChannelIDs[:3]
	_, err := EncodeReply(hits)
	assert.Error(t, err)
}

func TestErrorReplyFrame(t *testing.T) {
	frame := EncodeErrorReply(17)
	require.Equal(t, headerSize, len(frame))

	var remote *ErrRemote
	_, err := DecodeReply(frame)
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint32(17), remote.EventID)
}
