package backend

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Deterministic placeholder scoring: the same input always produces
// the same trust score, so demo mode is reproducible and testable.
// The score is derived from a digest of the first 64 KiB plus the file
// size, folded into [0,100].

const scoreSampleSize = 64 * 1024

// compositeWeights is the relative contribution of each analysis
// modality to the composite trust score.
var compositeWeights = map[string]float64{
	"model":       0.55,
	"metadata":    0.10,
	"fingerprint": 0.10,
	"compression": 0.08,
	"audio":       0.07,
	"emotion":     0.05,
	"sync":        0.05,
}

// fileDigest captures everything the mock scorer derives from a file.
type fileDigest struct {
	sum  [16]byte
	size int64
}

func digestFile(path string) (*fileDigest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, io.LimitReader(f, scoreSampleSize)); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	d := &fileDigest{size: info.Size()}
	copy(d.sum[:], h.Sum(nil))
	return d, nil
}

func digestBytes(data []byte) *fileDigest {
	n := len(data)
	if n > scoreSampleSize {
		data = data[:scoreSampleSize]
	}
	d := &fileDigest{size: int64(n)}
	sum := md5.Sum(data)
	copy(d.sum[:], sum[:])
	return d
}

// baseScore folds the digest into a [0,100] trust score.
func (d *fileDigest) baseScore() float64 {
	v := binary.BigEndian.Uint32(d.sum[:4])
	return float64((uint64(v) + uint64(d.size%1000)) % 101)
}

// modalityScore derives a per-modality variation of the base score,
// offset by up to ±10 using one digest byte per modality.
func (d *fileDigest) modalityScore(index int) float64 {
	offset := float64(d.sum[index%len(d.sum)]%21) - 10
	return math.Min(100, math.Max(0, d.baseScore()+offset))
}

// compositeScore combines per-modality scores with the canonical
// weights. Missing modalities renormalize the weight sum; an empty map
// falls back to a neutral 75.
func compositeScore(scores map[string]float64) float64 {
	var weighted, total float64
	for name, score := range scores {
		w, ok := compositeWeights[name]
		if !ok {
			continue
		}
		weighted += score * w
		total += w
	}
	if total == 0 {
		return 75
	}
	composite := weighted / total
	return math.Round(math.Min(100, math.Max(0, composite))*100) / 100
}

// ScoreFrame produces the deterministic trust score for one encoded
// live frame.
func ScoreFrame(data []byte) float64 {
	return digestBytes(data).baseScore()
}
