package wall

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Key is a fingerprint of the data SameAs compares. Walls that are SameAs
// each other always have equal keys, so a key can bucket walls before
// the exact comparison.
type Key [sha256.Size]byte

// String returns the key in hex.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Short returns the first twelve hex digits.
func (k Key) Short() string { return k.String()[:12] }

// Key returns the wall's structural fingerprint.
func (w *Wall) Key() Key { return w.key }

func structuralKey(w *Wall) Key {
	h := sha256.New()
	var buf [8]byte
	putInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	putRing := func(corners []r3.Vec) {
		putInt(len(corners))
		for _, c := range corners {
			for _, x := range [3]float64{c.X, c.Y, c.Z} {
				if x == 0 {
					x = 0 // -0 == +0 under SameAs
				}
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
				h.Write(buf[:])
			}
		}
	}

	putRing(w.boundary.corners)
	putInt(len(w.holes))
	for _, hole := range w.holes {
		putRing(hole.corners)
	}

	var k Key
	h.Sum(k[:0])
	return k
}
