package dspstage

import "github.com/n7cdr/pocketwave/internal/pipeline"

// RechunkArray is a stateful FanWorker stage (R->R) that repartitions a
// stream of arbitrary-length vectors into fixed-size blocks. It maintains
// a partially-filled buffer across Process calls: residual data carries
// forward into the next call, and any data left in the buffer when the
// stream ends is dropped rather than emitted short. One input vector can
// yield zero, one, or several output blocks, which is why this stage needs
// the fan-out Process contract instead of the plain one-in/one-out Worker.
//
// Each emitted block carries the metadata of whichever input packet
// supplied its last sample, matching the carry-forward rule used
// throughout this package for stages that merge multiple inputs into one
// output.
type RechunkArray struct {
	blockSize int
	partial   []float64
	partialN  int
}

// NewRechunkArray builds a RechunkArray emitting fixed blocks of blockSize
// samples.
func NewRechunkArray(blockSize int) *RechunkArray {
	return &RechunkArray{
		blockSize: blockSize,
		partial:   make([]float64, blockSize),
	}
}

func (*RechunkArray) Name() string { return "rechunk_array" }

func (r *RechunkArray) Process(pkt *pipeline.Packet) ([]*pipeline.Packet, error) {
	in := realData("rechunk_array", pkt)

	var out []*pipeline.Packet
	pos := 0
	for pos < len(in) {
		room := r.blockSize - r.partialN
		avail := len(in) - pos
		amt := min(room, avail)

		copy(r.partial[r.partialN:r.partialN+amt], in[pos:pos+amt])
		r.partialN += amt
		pos += amt

		if r.partialN == r.blockSize {
			block := make([]float64, r.blockSize)
			copy(block, r.partial)
			blockPkt := pkt.Clone()
			blockPkt.Data = block
			out = append(out, blockPkt)
			r.partialN = 0
		}
	}
	return out, nil
}
