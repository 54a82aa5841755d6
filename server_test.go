package vtscope

import (
	"context"
	"testing"
	"time"

	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/httpapi"
	"pkt.systems/vtscope/schema"
)

func TestNewRequiresServices(t *testing.T) {
	if _, err := New(ServerConfig{}, ServerDeps{Hub: core.NewHub(8, nil)}); err == nil {
		t.Fatalf("expected error when no services enabled")
	}
}

func TestNewRequiresHub(t *testing.T) {
	if _, err := New(ServerConfig{}, ServerDeps{}, WithHTTP()); err == nil {
		t.Fatalf("expected error when hub missing")
	}
}

func TestServerStopCancelsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &compositeServer{
		ctx:     ctx,
		cancel:  cancel,
		started: true,
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := server.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected server context to be canceled")
	}
}

func TestServerStartRejectsSecondStart(t *testing.T) {
	hub := core.NewHub(8, nil)
	server, err := New(ServerConfig{
		HTTP: httpapi.Config{Addr: "127.0.0.1:0"},
	}, ServerDeps{Hub: hub}, WithHTTP())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := server.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer server.Stop(context.Background())
	if err := server.Start(ctx); err == nil {
		t.Fatalf("expected error on second start")
	}
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	var got int
	sink := core.BatchSinkFunc(func(batch []schema.Event) { got += len(batch) })
	fanout := FanoutSinks(nil, sink, nil)
	fanout.OnBatch([]schema.Event{{Type: schema.EventPrint}, {Type: schema.EventLineBreak}})
	if got != 2 {
		t.Fatalf("expected 2 events through fanout, got %d", got)
	}
	if FanoutSinks() != nil {
		t.Fatalf("expected nil fanout for no sinks")
	}
	if FanoutSinks(sink) == nil {
		t.Fatalf("expected single sink passthrough")
	}
}
