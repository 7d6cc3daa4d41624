package pausable

import "github.com/ib-77/ropause/pkg/rop/signal"

// gate is the pause flag. Only effective changes reach subscribers, so
// repeated Pause or Resume calls can never start a second pump.
type gate struct {
	sig *signal.Signal[bool]
}

func newGate(paused bool) *gate {
	return &gate{sig: signal.New(paused)}
}

func (g *gate) pause() bool {
	return g.sig.Set(true)
}

func (g *gate) resume() bool {
	return g.sig.Set(false)
}

func (g *gate) paused() bool {
	return g.sig.Get()
}

func (g *gate) subscribe(fn func(paused bool)) func() {
	return g.sig.Subscribe(fn)
}
