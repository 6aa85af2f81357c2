package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeHitBatch builds n hit photons whose time stamps encode their original
// order, offset by base so per-channel batches stay distinguishable.
func makeHitBatch(n int, base float64) PhotonBatch {
	batch := NewPhotonBatch(n)
	for i := 0; i < n; i++ {
		batch.X[i] = base
		batch.Wavelength[i] = 400 + base
		batch.Time[i] = base + float64(i)
	}
	return batch
}

func TestAggregateHits_EmptyMap(t *testing.T) {
	aggregated, err := AggregateHits(11, ChannelHits{})
	require.NoError(t, err)
	assert.Equal(t, uint32(11), aggregated.EventID)
	assert.Equal(t, 0, aggregated.Photons.NumPhotons())
	assert.Empty(t, aggregated.ChannelIDs)
	assert.Empty(t, aggregated.TrackIDs)
}

func TestAggregateHits_AscendingChannelOrder(t *testing.T) {
	// Two photons on channel 3, one on channel 1: the reply must come out
	// grouped in ascending channel order, [1 3 3].
	hits := ChannelHits{
		3: makeHitBatch(2, 30),
		1: makeHitBatch(1, 10),
	}
	aggregated, err := AggregateHits(8, hits)
	require.NoError(t, err)

	assert.Equal(t, 3, aggregated.Photons.NumPhotons())
	assert.Equal(t, []uint32{1, 3, 3}, aggregated.ChannelIDs)
	assert.Equal(t, uint32(8), aggregated.EventID)
	// Per-channel hit order preserved.
	assert.Equal(t, []float64{10, 30, 31}, aggregated.Photons.Time)
}

func TestAggregateHits_SumInvariant(t *testing.T) {
	hits := ChannelHits{
		7:   makeHitBatch(4, 70),
		2:   makeHitBatch(1, 20),
		100: makeHitBatch(3, 1000),
		5:   makeHitBatch(0, 50),
	}
	total := 0
	for _, batch := range hits {
		total += batch.NumPhotons()
	}

	aggregated, err := AggregateHits(1, hits)
	require.NoError(t, err)
	assert.Equal(t, total, aggregated.Photons.NumPhotons())
	assert.Equal(t, total, len(aggregated.ChannelIDs))
	assert.NoError(t, aggregated.Photons.CheckConsistency())
}

func TestAggregateHits_GroupedNonDecreasing(t *testing.T) {
	hits := make(ChannelHits)
	for channel := uint32(0); channel < 50; channel += 3 {
		hits[channel] = makeHitBatch(int(channel%4), float64(channel))
	}
	aggregated, err := AggregateHits(2, hits)
	require.NoError(t, err)

	for i := 1; i < len(aggregated.ChannelIDs); i++ {
		assert.LessOrEqual(t, aggregated.ChannelIDs[i-1], aggregated.ChannelIDs[i])
	}
}

func TestAggregateHits_TrackIDPlaceholder(t *testing.T) {
	hits := ChannelHits{
		4: makeHitBatch(3, 40),
		9: makeHitBatch(2, 90),
	}
	aggregated, err := AggregateHits(3, hits)
	require.NoError(t, err)
	// Until the engine propagates real track ids the placeholder array is a
	// copy of the channel ids.
	assert.Equal(t, aggregated.ChannelIDs, aggregated.TrackIDs)
}

func TestAggregateHits_InconsistentBatch(t *testing.T) {
	broken := makeHitBatch(2, 10)
	broken.Wavelength = broken.Wavelength[:1]

	var inconsistent *ErrInconsistentHits
	_, err := AggregateHits(1, ChannelHits{6: broken})
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, uint32(6), inconsistent.Channel)
}
