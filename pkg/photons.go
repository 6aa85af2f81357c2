package bridge

import "fmt"

// NumAttributes is the number of per-photon float64 attributes carried on
// the wire: position, direction and polarization (3 components each),
// wavelength and time.
const NumAttributes = 11

// PhotonBatch holds one event's worth of photons as parallel attribute
// slices, in the same block-contiguous order used on the wire.
type PhotonBatch struct {
	X, Y, Z          []float64
	DirX, DirY, DirZ []float64
	PolX, PolY, PolZ []float64
	Wavelength       []float64
	Time             []float64
}

// NewPhotonBatch allocates a batch with room for n photons.
func NewPhotonBatch(n int) PhotonBatch {
	return PhotonBatch{
		X:          make([]float64, n),
		Y:          make([]float64, n),
		Z:          make([]float64, n),
		DirX:       make([]float64, n),
		DirY:       make([]float64, n),
		DirZ:       make([]float64, n),
		PolX:       make([]float64, n),
		PolY:       make([]float64, n),
		PolZ:       make([]float64, n),
		Wavelength: make([]float64, n),
		Time:       make([]float64, n),
	}
}

// attributes returns the slices in wire order. The pointer form is shared
// between the codec and the batch helpers so the order is defined once.
func (b *PhotonBatch) attributes() [NumAttributes]*[]float64 {
	return [NumAttributes]*[]float64{
		&b.X, &b.Y, &b.Z,
		&b.DirX, &b.DirY, &b.DirZ,
		&b.PolX, &b.PolY, &b.PolZ,
		&b.Wavelength, &b.Time,
	}
}

// NumPhotons returns the number of photons in the batch.
func (b *PhotonBatch) NumPhotons() int {
	return len(b.X)
}

// CheckConsistency verifies that every attribute slice has the same length.
func (b *PhotonBatch) CheckConsistency() error {
	n := len(b.X)
	for _, attr := range b.attributes() {
		if len(*attr) != n {
			return fmt.Errorf("photon batch attribute length mismatch: %d vs %d", len(*attr), n)
		}
	}
	return nil
}

// Append copies all photons from other onto the end of the batch.
func (b *PhotonBatch) Append(other *PhotonBatch) {
	dst := b.attributes()
	src := other.attributes()
	for i := range dst {
		*dst[i] = append(*dst[i], *src[i]...)
	}
}

// ChannelHits maps a channel id to the photons that terminated on it.
// It is produced by the simulation engine and consumed read-only.
type ChannelHits map[uint32]PhotonBatch

// Event is one simulated propagation of a photon batch. It is constructed
// per request and discarded after the reply is sent.
type Event struct {
	EventID  uint32
	Photons  PhotonBatch
	TrackIDs []uint32
	Hits     ChannelHits
}

// AggregatedHits is the reply-side view of an event: all channel hits
// concatenated in ascending channel order, with one channel id per photon.
// TrackIDs is a copy of ChannelIDs until the engine propagates real
// per-photon provenance; callers must not read it as a track identifier.
type AggregatedHits struct {
	EventID    uint32
	Photons    PhotonBatch
	ChannelIDs []uint32
	TrackIDs   []uint32
}
