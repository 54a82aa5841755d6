package vtscope

import (
	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/schema"
)

type eventFanout struct {
	sinks []core.BatchSink
}

// FanoutSinks combines several batch sinks into one. Nil sinks are skipped;
// a single non-nil sink is returned as is.
func FanoutSinks(sinks ...core.BatchSink) core.BatchSink {
	kept := make([]core.BatchSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		kept = append(kept, sink)
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return eventFanout{sinks: kept}
}

func (f eventFanout) OnBatch(batch []schema.Event) {
	for _, sink := range f.sinks {
		sink.OnBatch(batch)
	}
}
