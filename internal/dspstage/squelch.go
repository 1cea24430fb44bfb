package dspstage

import (
	"github.com/n7cdr/pocketwave/internal/param"
	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// ApplySquelch is a Window stage (C->C): when the measured level is at or
// below the squelch threshold, it mutes the chunk in place and marks it
// squelched so downstream stages can skip heavy work; otherwise it passes
// the samples through untouched. Applying it twice with the same threshold
// is idempotent, since a zeroed, already-squelched chunk's dB is never
// recomputed by this stage.
type ApplySquelch struct {
	squelch *param.Numeric
}

// NewApplySquelch reads its threshold from the given Numeric cell on every
// packet, so UI-driven squelch changes take effect on the next chunk
// without the pipeline needing to be rebuilt.
func NewApplySquelch(squelch *param.Numeric) *ApplySquelch {
	return &ApplySquelch{squelch: squelch}
}

func (*ApplySquelch) Name() string { return "apply_squelch" }

func (s *ApplySquelch) Inspect(pkt *pipeline.Packet) error {
	samples := complexData("apply_squelch", pkt)
	db, _ := pkt.Meta.DB()

	if s.squelch.Get() >= db {
		for i := range samples {
			samples[i] = 0
		}
		pkt.Meta.SetSquelched(true)
		return nil
	}
	pkt.Meta.SetSquelched(false)
	return nil
}
