package dspstage

import (
	"github.com/n7cdr/pocketwave/internal/audiobridge"
	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// ReshapeArray is the final Worker stage (R->R) in the receive chain: it
// retags the flat real vector as an audiobridge.AudioFrame, the shape the
// audio sink expects. Reshaping and reshaping back is identity on content;
// this stage never copies or reorders samples, only relabels the slice.
type ReshapeArray struct{}

func (ReshapeArray) Name() string { return "reshape_array" }

func (ReshapeArray) Process(pkt *pipeline.Packet) (*pipeline.Packet, error) {
	in := realData("reshape_array", pkt)
	pkt.Data = audiobridge.AudioFrame(in)
	return pkt, nil
}
