package bridge

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AggregateHits merges the per-channel hit batches of one event into a
// single reply batch. Channels are visited in ascending channel-id order so
// that the reply is reproducible across runs; map iteration order is never
// used. Within a channel the hits keep their original order.
//
// The engine does not propagate per-photon track identifiers through its hit
// representation, so the track-id output slot is filled with a copy of the
// channel id. Callers must not read that field as a real track identifier.
func AggregateHits(eventID uint32, hits ChannelHits) (*AggregatedHits, error) {
	channels := maps.Keys(hits)
	slices.Sort(channels)

	aggregated := &AggregatedHits{
		EventID:    eventID,
		Photons:    NewPhotonBatch(0),
		ChannelIDs: make([]uint32, 0),
		TrackIDs:   make([]uint32, 0),
	}

	total := 0
	for _, channel := range channels {
		batch := hits[channel]
		if err := batch.CheckConsistency(); err != nil {
			return nil, &ErrInconsistentHits{Channel: channel, Err: err}
		}
		aggregated.Photons.Append(&batch)
		for i := 0; i < batch.NumPhotons(); i++ {
			aggregated.ChannelIDs = append(aggregated.ChannelIDs, channel)
			aggregated.TrackIDs = append(aggregated.TrackIDs, channel)
		}
		total += batch.NumPhotons()
	}

	// Checked invariant: the aggregate must account for every hit.
	if aggregated.Photons.NumPhotons() != total || len(aggregated.ChannelIDs) != total {
		return nil, fmt.Errorf("aggregated %d photons and %d channel ids, expected %d",
			aggregated.Photons.NumPhotons(), len(aggregated.ChannelIDs), total)
	}
	return aggregated, nil
}
