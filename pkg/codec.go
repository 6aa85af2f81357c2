package bridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Wire layout, shared by request and reply. A message is a single frame:
// two uint32 header words (photon count, event id), eleven block-contiguous
// float64 attribute arrays, then the trailing uint32 arrays (track id on the
// request side; channel id and track-id placeholder on the reply side).
const (
	headerSize = 8

	// Bytes per photon after the header.
	requestPhotonSize = NumAttributes*8 + 4
	replyPhotonSize   = NumAttributes*8 + 8

	// Photon count announcing an error reply. Cannot collide with a real
	// reply: a count this large never fits in a message.
	errorSentinel = 0xFFFFFFFF
)

// DecodeRequest parses a request buffer into an Event. The total length is
// validated against the header photon count before any attribute slice is
// allocated; any mismatch is an ErrMalformedMessage.
func DecodeRequest(data []byte) (*Event, error) {
	if len(data) < headerSize {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: headerSize}
	}
	numPhotons := binary.LittleEndian.Uint32(data[0:4])
	eventID := binary.LittleEndian.Uint32(data[4:8])

	expected := uint64(headerSize) + uint64(numPhotons)*requestPhotonSize
	if uint64(len(data)) != expected {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
	}

	event := &Event{
		EventID:  eventID,
		Photons:  NewPhotonBatch(int(numPhotons)),
		TrackIDs: make([]uint32, numPhotons),
	}

	reader := bytes.NewReader(data[headerSize:])
	for _, attr := range event.Photons.attributes() {
		if err := binary.Read(reader, binary.LittleEndian, *attr); err != nil {
			return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
		}
	}
	if err := binary.Read(reader, binary.LittleEndian, event.TrackIDs); err != nil {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
	}
	return event, nil
}

// EncodeRequest is the inverse of DecodeRequest. It is used by the client
// side of the bridge.
func EncodeRequest(event *Event) ([]byte, error) {
	if err := event.Photons.CheckConsistency(); err != nil {
		return nil, err
	}
	numPhotons := event.Photons.NumPhotons()
	if uint64(numPhotons) > math.MaxUint32 {
		return nil, &ErrEncodingOverflow{Count: numPhotons}
	}
	if len(event.TrackIDs) != numPhotons {
		return nil, fmt.Errorf("track id count %d does not match photon count %d",
			len(event.TrackIDs), numPhotons)
	}

	buffer := bytes.NewBuffer(make([]byte, 0, headerSize+numPhotons*requestPhotonSize))
	binary.Write(buffer, binary.LittleEndian, uint32(numPhotons))
	binary.Write(buffer, binary.LittleEndian, event.EventID)
	for _, attr := range event.Photons.attributes() {
		binary.Write(buffer, binary.LittleEndian, *attr)
	}
	binary.Write(buffer, binary.LittleEndian, event.TrackIDs)
	return buffer.Bytes(), nil
}

// EncodeReply serializes an aggregated reply with the mirrored layout of the
// request: header, eleven float64 blocks, channel ids, then the track-id
// placeholder array.
func EncodeReply(hits *AggregatedHits) ([]byte, error) {
	if err := hits.Photons.CheckConsistency(); err != nil {
		return nil, err
	}
	numPhotons := hits.Photons.NumPhotons()
	if uint64(numPhotons) >= errorSentinel {
		return nil, &ErrEncodingOverflow{Count: numPhotons}
	}
	if len(hits.ChannelIDs) != numPhotons || len(hits.TrackIDs) != numPhotons {
		return nil, fmt.Errorf("channel id count %d does not match photon count %d",
			len(hits.ChannelIDs), numPhotons)
	}

	buffer := bytes.NewBuffer(make([]byte, 0, headerSize+numPhotons*replyPhotonSize))
	binary.Write(buffer, binary.LittleEndian, uint32(numPhotons))
	binary.Write(buffer, binary.LittleEndian, hits.EventID)
	for _, attr := range hits.Photons.attributes() {
		binary.Write(buffer, binary.LittleEndian, *attr)
	}
	binary.Write(buffer, binary.LittleEndian, hits.ChannelIDs)
	binary.Write(buffer, binary.LittleEndian, hits.TrackIDs)
	return buffer.Bytes(), nil
}

// DecodeReply parses a reply buffer. An error frame from the server is
// returned as ErrRemote.
func DecodeReply(data []byte) (*AggregatedHits, error) {
	if len(data) < headerSize {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: headerSize}
	}
	numPhotons := binary.LittleEndian.Uint32(data[0:4])
	eventID := binary.LittleEndian.Uint32(data[4:8])

	if numPhotons == errorSentinel {
		return nil, &ErrRemote{EventID: eventID}
	}

	expected := uint64(headerSize) + uint64(numPhotons)*replyPhotonSize
	if uint64(len(data)) != expected {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
	}

	hits := &AggregatedHits{
		EventID:    eventID,
		Photons:    NewPhotonBatch(int(numPhotons)),
		ChannelIDs: make([]uint32, numPhotons),
		TrackIDs:   make([]uint32, numPhotons),
	}

	reader := bytes.NewReader(data[headerSize:])
	for _, attr := range hits.Photons.attributes() {
		if err := binary.Read(reader, binary.LittleEndian, *attr); err != nil {
			return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
		}
	}
	if err := binary.Read(reader, binary.LittleEndian, hits.ChannelIDs); err != nil {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
	}
	if err := binary.Read(reader, binary.LittleEndian, hits.TrackIDs); err != nil {
		return nil, &ErrMalformedMessage{Length: len(data), Expected: int(expected)}
	}
	return hits, nil
}

// EncodeErrorReply builds the 8-byte error frame sent when a request cannot
// be served. The event id is echoed when the request header was readable,
// zero otherwise.
func EncodeErrorReply(eventID uint32) []byte {
	frame := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(frame[0:4], errorSentinel)
	binary.LittleEndian.PutUint32(frame[4:8], eventID)
	return frame
}
