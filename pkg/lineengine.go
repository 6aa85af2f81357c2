package bridge

import "math"

// speed of light in mm/ns, the bridge's native units
const speedOfLight = 299.792458

// LineEngine is a development stand-in for the GPU transport engine: each
// photon travels on a straight line and registers a hit on the closest
// channel whose position lies within the capture radius of its ray. No
// optics is simulated; it exists so the bridge can run end to end without
// the GPU binding. Production deployments inject the real engine instead.
type LineEngine struct {
	Channels *ChannelMap
	Radius   float64
}

func NewLineEngine(channels *ChannelMap, radius float64) *LineEngine {
	return &LineEngine{Channels: channels, Radius: radius}
}

func (e *LineEngine) Propagate(photons *PhotonBatch, opts PropagateOptions) ([]ChannelHits, error) {
	if err := photons.CheckConsistency(); err != nil {
		return nil, err
	}

	hits := make(ChannelHits)
	if !opts.KeepHits {
		return []ChannelHits{hits}, nil
	}

	channels := e.Channels.Channels()
	for i := 0; i < photons.NumPhotons(); i++ {
		channel, distance, ok := e.intersect(photons, i, channels)
		if !ok {
			continue
		}
		position := e.Channels.Positions[channel]
		batch := hits[channel]
		batch.X = append(batch.X, position.X)
		batch.Y = append(batch.Y, position.Y)
		batch.Z = append(batch.Z, position.Z)
		batch.DirX = append(batch.DirX, photons.DirX[i])
		batch.DirY = append(batch.DirY, photons.DirY[i])
		batch.DirZ = append(batch.DirZ, photons.DirZ[i])
		batch.PolX = append(batch.PolX, photons.PolX[i])
		batch.PolY = append(batch.PolY, photons.PolY[i])
		batch.PolZ = append(batch.PolZ, photons.PolZ[i])
		batch.Wavelength = append(batch.Wavelength, photons.Wavelength[i])
		batch.Time = append(batch.Time, photons.Time[i]+distance/speedOfLight)
		hits[channel] = batch
	}
	return []ChannelHits{hits}, nil
}

// intersect finds the first channel along the photon's ray whose position is
// within the capture radius, scanning channels in ascending id order so ties
// resolve deterministically.
func (e *LineEngine) intersect(photons *PhotonBatch, i int, channels []uint32) (uint32, float64, bool) {
	var best uint32
	bestDistance := math.Inf(1)
	found := false

	for _, channel := range channels {
		position := e.Channels.Positions[channel]
		// Projection of the channel position onto the ray.
		dx := position.X - photons.X[i]
		dy := position.Y - photons.Y[i]
		dz := position.Z - photons.Z[i]
		t := dx*photons.DirX[i] + dy*photons.DirY[i] + dz*photons.DirZ[i]
		if t <= 0 {
			continue
		}
		px := dx - t*photons.DirX[i]
		py := dy - t*photons.DirY[i]
		pz := dz - t*photons.DirZ[i]
		miss := math.Sqrt(px*px + py*py + pz*pz)
		if miss > e.Radius {
			continue
		}
		if t < bestDistance {
			best = channel
			bestDistance = t
			found = true
		}
	}
	return best, bestDistance, found
}
