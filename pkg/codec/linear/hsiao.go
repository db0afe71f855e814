// Package linear implements Hsiao SEC-DED binary linear codes (spec 4.B.3),
// grounded on dram_error_sim's hsiao.hh/binary_linear_codec.cc H/G-matrix
// codec structure. hsiao.hh's own matrix-construction source was not part of
// the retrieved corpus (only its header), so the H matrix here is built with
// a generic balanced odd-column-weight algorithm — the well-known Hsiao
// construction criterion (every column odd weight, no two columns equal, row
// fan-in kept as even as possible) — rather than guessing at unseen exact
// column assignments.
package linear

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
)

// Hsiao is a systematic (bitN, bitK) SEC-DED binary linear code: bitK data
// bits followed by bitR parity bits, decoded via syndrome lookup against the
// H matrix's columns.
type Hsiao struct {
	name       string
	bitN, bitR int
	bitK       int
	// hCols[j] is column j of the H matrix, as a bitR-bit mask (bit k set
	// means row k has a 1 in this column).
	hCols      []int
	colForSyn  map[int]int // syndrome value -> corrected column (SEC lookup)
}

// NewHsiao builds a Hsiao SEC-DED codec for a bitN-bit codeword with bitR
// parity bits (bitK = bitN-bitR data bits).
func NewHsiao(name string, bitN, bitR int) (*Hsiao, error) {
	bitK := bitN - bitR
	if err := codec.CheckBitShape(name, bitN, bitK, bitR); err != nil {
		return nil, err
	}
	cols, err := buildHsiaoColumns(name, bitN, bitR, bitK)
	if err != nil {
		return nil, err
	}
	h := &Hsiao{name: name, bitN: bitN, bitR: bitR, bitK: bitK, hCols: cols}
	h.colForSyn = make(map[int]int, bitN)
	for j, col := range h.hCols {
		h.colForSyn[col] = j
	}
	return h, nil
}

func (h *Hsiao) Name() string       { return h.name }
func (h *Hsiao) BitN() int          { return h.bitN }
func (h *Hsiao) BitR() int          { return h.bitR }
func (h *Hsiao) BitK() int          { return h.bitK }
func (h *Hsiao) ChipID(pos int) int { return pos }

// buildHsiaoColumns returns bitN column masks: the first bitK are distinct
// odd-weight (>=3) data columns chosen to balance row fan-in, the last bitR
// are the identity columns (one bit set) for the systematic parity bits.
// Returns CodecShapeMismatch if bitR can't hold bitK distinct odd-weight
// columns (spec 4.B: an inconsistent bitN/bitK/bitR triple is fatal, not a
// panic).
func buildHsiaoColumns(name string, bitN, bitR, bitK int) ([]int, error) {
	type candidate struct {
		mask   int
		weight int
	}
	var candidates []candidate
	for mask := 1; mask < (1 << bitR); mask++ {
		w := bits.OnesCount(uint(mask))
		if w >= 3 && w%2 == 1 {
			candidates = append(candidates, candidate{mask: mask, weight: w})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight < candidates[j].weight
		}
		return candidates[i].mask < candidates[j].mask
	})
	if len(candidates) < bitK {
		return nil, &codec.CodecShapeMismatch{CodecName: name, Reason: fmt.Sprintf("bitR=%d too small to hold bitK=%d odd-weight Hsiao data columns", bitR, bitK)}
	}

	rowCount := make([]int, bitR)
	cols := make([]int, 0, bitN)
	used := make([]bool, len(candidates))
	for len(cols) < bitK {
		bestIdx := -1
		bestScore := -1
		for i, c := range candidates {
			if used[i] {
				continue
			}
			score := 0
			for k := 0; k < bitR; k++ {
				if c.mask&(1<<k) != 0 {
					score += rowCount[k]
				}
			}
			if bestIdx == -1 || score < bestScore {
				bestIdx, bestScore = i, score
			}
		}
		used[bestIdx] = true
		c := candidates[bestIdx]
		cols = append(cols, c.mask)
		for k := 0; k < bitR; k++ {
			if c.mask&(1<<k) != 0 {
				rowCount[k]++
			}
		}
	}

	for k := 0; k < bitR; k++ {
		cols = append(cols, 1<<k)
	}
	return cols, nil
}

// Encode computes the bitR systematic parity bits and copies data through
// unchanged (binary_linear_codec.cc's G-matrix product, specialized to a
// systematic identity-plus-parity form).
func (h *Hsiao) Encode(data *block.Block, encoded *block.ECCWord) {
	encoded.Reset()
	for i := 0; i < h.bitK; i++ {
		encoded.SetBit(i, data.GetBit(i))
	}
	for k := 0; k < h.bitR; k++ {
		parity := false
		for i := 0; i < h.bitK; i++ {
			if h.hCols[i]&(1<<k) != 0 && data.GetBit(i) {
				parity = !parity
			}
		}
		encoded.SetBit(h.bitK+k, parity)
	}
}

// Decode computes the syndrome (binary_linear_codec.cc's genSyndrome) and
// interprets it against the H matrix's columns: a matching column is a
// correctable single-bit error (SEC); any nonzero syndrome matching no
// column has even weight by construction and is an uncorrectable detected
// double error (DED) -> DUE.
func (h *Hsiao) Decode(msg, decoded *block.ECCWord, correctedPos map[int]struct{}) codec.Outcome {
	decoded.Reset()
	for i := 0; i < h.bitN; i++ {
		decoded.SetBit(i, msg.GetBit(i))
	}

	syndrome := 0
	for k := 0; k < h.bitR; k++ {
		parity := msg.GetBit(h.bitK + k)
		for i := 0; i < h.bitK; i++ {
			if h.hCols[i]&(1<<k) != 0 && msg.GetBit(i) {
				parity = !parity
			}
		}
		if parity {
			syndrome |= 1 << k
		}
	}

	if syndrome == 0 {
		return codec.NE
	}

	if col, ok := h.colForSyn[syndrome]; ok {
		decoded.InvBit(col)
		if correctedPos != nil {
			correctedPos[col] = struct{}{}
		}
		if decoded.IsZero(0) {
			return codec.CE
		}
		return codec.SDC
	}
	return codec.DUE
}
