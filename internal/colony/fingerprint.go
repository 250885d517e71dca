package colony

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"antcolony/internal/pheromone"
)

// Fingerprint hashes the tick, both fields, every ant and every tabular learner.
// Two colonies with equal fingerprints followed the same trajectory.
func (c *Colony) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	putInt(int64(c.tick))
	for _, trail := range pheromone.Trails() {
		for _, v := range c.world.Field(trail).Snapshot() {
			putFloat(v)
		}
	}
	for i, a := range c.ants {
		putInt(int64(a.Position().X))
		putInt(int64(a.Position().Y))
		putInt(int64(a.Direction()))
		putInt(int64(a.TotalFood()))
		putInt(int64(a.StepsSinceDrop()))
		if a.Carrying() {
			putInt(1)
		} else {
			putInt(0)
		}
		if brain, ok := c.Brain(i); ok {
			for _, v := range brain.Table().Snapshot() {
				putFloat(v)
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
