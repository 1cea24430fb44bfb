// Package pipeline implements the DSP graph: a directed chain of stages
// connected by bounded hand-off queues, driven by one goroutine per node,
// torn down by a single end-of-stream sentinel cascading from the source.
//
// The element type of a Packet's data evolves across the chain (complex at
// the source, real after demodulation); stages that need a particular shape
// type-assert Packet.Data themselves, matching the dynamically-typed
// Packet described by the spec this graph implements.
package pipeline

import "time"

// Item is anything that can travel on an Outbox channel: either a *Packet or
// the EndOfStream sentinel. It is a closed interface so one channel can carry
// both without resorting to `any`.
type Item interface {
	isItem()
}

// Packet is the unit traveling through the DSP graph (PipelineDataPackage
// in the spec this implements). Meta keys set by one stage are carried
// forward unmodified by later stages unless that stage's contract is to
// overwrite them.
type Packet struct {
	Data any
	Meta Meta
}

func (*Packet) isItem() {}

// Clone returns a shallow copy of p with its own Meta map, so a stage that
// needs to hand the same logical packet to more than one downstream edge
// (fan-out) doesn't let one branch's metadata writes leak into another's.
func (p *Packet) Clone() *Packet {
	m := make(Meta, len(p.Meta))
	for k, v := range p.Meta {
		m[k] = v
	}
	return &Packet{Data: p.Data, Meta: m}
}

// EndOfStream is the single distinguished sentinel. A Worker or Window
// receiving it stops its own outbox (emitting one EndOfStream per
// registered consumer) and exits; an Endpoint receiving it simply returns.
type EndOfStream struct{}

func (EndOfStream) isItem() {}

// Meta keys recognized by the stages in this package. Meta is a small
// mapping keyed by string so stages added later can carry new fields
// without changing the Packet type.
type Meta map[string]any

const (
	metaTimestamp = "timestamp"
	metaDB        = "dB"
	metaSquelched = "squelched"
	metaDemodName = "demod_name"
)

func NewMeta() Meta { return make(Meta) }

func (m Meta) SetTimestamp(t time.Time) { m[metaTimestamp] = t }

func (m Meta) Timestamp() (time.Time, bool) {
	t, ok := m[metaTimestamp].(time.Time)
	return t, ok
}

func (m Meta) SetDB(db float64) { m[metaDB] = db }

func (m Meta) DB() (float64, bool) {
	v, ok := m[metaDB].(float64)
	return v, ok
}

func (m Meta) SetSquelched(v bool) { m[metaSquelched] = v }

func (m Meta) Squelched() bool {
	v, _ := m[metaSquelched].(bool)
	return v
}

func (m Meta) SetDemodName(name string) { m[metaDemodName] = name }

func (m Meta) DemodName() (string, bool) {
	v, ok := m[metaDemodName].(string)
	return v, ok
}
