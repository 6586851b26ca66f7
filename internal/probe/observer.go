package probe

import "github.com/nao1215/linkprobe/internal/model"

// Observer is notified of every outcome as soon as it is known.
// Observe may be called from several goroutines at once.
type Observer interface {
	Observe(outcome model.ProbeOutcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(outcome model.ProbeOutcome)

// Observe calls f(outcome).
func (f ObserverFunc) Observe(outcome model.ProbeOutcome) {
	f(outcome)
}

func notify(observers []Observer, outcome model.ProbeOutcome) {
	for _, o := range observers {
		o.Observe(outcome)
	}
}
