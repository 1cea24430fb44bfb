package ipc

import (
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// ParamOpKind is the closed set of mutations the UI process can ask the
// receiver process to perform on a named parameter cell. The UI process
// never holds the cell itself -- cells live in the receiver process next
// to the DSP graph that reads them -- so every UI-driven mutation crosses
// the process boundary as one of these.
type ParamOpKind string

const (
	OpSet         ParamOpKind = "set"
	OpStepUp      ParamOpKind = "step_up"
	OpStepDown    ParamOpKind = "step_down"
	OpCycleUp     ParamOpKind = "cycle_up"
	OpCycleDown   ParamOpKind = "cycle_down"
	OpSelectDemod ParamOpKind = "select_demod"
)

// ParamOp is one mutation request, carried as its own YAML document on
// the UI process's stdout, which the receiver reads through the pipe it
// attached there when spawning the UI.
type ParamOp struct {
	Name  string      `yaml:"name"`
	Kind  ParamOpKind `yaml:"kind"`
	Value float64     `yaml:"value,omitempty"`
	Demod string      `yaml:"demod,omitempty"`
}

// OpPublisher is the UI process's half: it sends ParamOps toward the
// receiver.
type OpPublisher struct {
	mu  sync.Mutex
	enc *yaml.Encoder
}

func NewOpPublisher(w io.Writer) *OpPublisher {
	return &OpPublisher{enc: yaml.NewEncoder(w)}
}

func (p *OpPublisher) Send(op ParamOp) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(op)
}

func (p *OpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Close()
}

// OpSubscriber is the receiver process's half: it reads ParamOps sent by
// the UI process and applies them to the local param.Store.
type OpSubscriber struct {
	dec *yaml.Decoder
}

func NewOpSubscriber(r io.Reader) *OpSubscriber {
	return &OpSubscriber{dec: yaml.NewDecoder(r)}
}

func (s *OpSubscriber) Next() (ParamOp, error) {
	var op ParamOp
	if err := s.dec.Decode(&op); err != nil {
		return ParamOp{}, err
	}
	return op, nil
}
