package ipc

import (
	"fmt"

	"github.com/n7cdr/pocketwave/internal/param"
)

// Selectable is the narrow surface ApplyOp needs from a demod-manager-like
// Device cell value to handle OpSelectDemod.
type Selectable interface {
	Select(name string)
}

// ApplyOp mutates store according to op, run in the receiver process for
// every ParamOp read off an OpSubscriber. Unknown parameter names are
// configuration errors per the error-handling design: they're reported,
// not silently dropped.
func ApplyOp(store *param.Store, op ParamOp) error {
	if _, ok := store.Cell(op.Name); !ok {
		return fmt.Errorf("ipc: unknown parameter %q", op.Name)
	}
	switch op.Kind {
	case OpSet:
		store.Numeric(op.Name).Set(op.Value)
	case OpStepUp:
		store.Numeric(op.Name).Step(param.Up)
	case OpStepDown:
		store.Numeric(op.Name).Step(param.Down)
	case OpCycleUp:
		store.Numeric(op.Name).CycleStepSize(param.Up)
	case OpCycleDown:
		store.Numeric(op.Name).CycleStepSize(param.Down)
	case OpSelectDemod:
		store.Device(op.Name).Do(func(v any) {
			if sel, ok := v.(Selectable); ok {
				sel.Select(op.Demod)
			}
		})
	default:
		return fmt.Errorf("ipc: unknown param op kind %q", op.Kind)
	}
	return nil
}
