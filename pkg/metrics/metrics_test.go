package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/filament-ui/filament/pkg/reactive"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()
		if len(m) != 1 {
			t.Fatalf("metric %s: expected 1 series, got %d", name, len(m))
		}
		if c := m[0].GetCounter(); c != nil {
			return c.GetValue()
		}
		return m[0].GetGauge().GetValue()
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestCollectorReportsRuntimeStats(t *testing.T) {
	reactive.ResetExecutor()
	defer reactive.ResetExecutor()
	if err := reactive.InitSynchronous(); err != nil {
		t.Fatalf("init executor: %v", err)
	}

	rt := reactive.CurrentRuntime()
	defer reactive.ReleaseRuntime()

	reg := prometheus.NewPedanticRegistry()
	if _, err := Register(rt, WithRegistry(reg)); err != nil {
		t.Fatalf("register: %v", err)
	}

	read, write := reactive.NewSignal(1)
	doubled := reactive.NewMemo(func(prev *int) int { return read.Get() * 2 })
	reactive.NewEffect(func() reactive.Cleanup {
		_ = doubled.Get()
		return nil
	})

	write.Set(2)
	write.Set(3)

	if got := gatherValue(t, reg, "filament_reactive_signal_writes_total"); got != 2 {
		t.Fatalf("signal_writes_total = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "filament_reactive_memo_recomputes_total"); got != 3 {
		t.Fatalf("memo_recomputes_total = %v, want 3", got)
	}
	if got := gatherValue(t, reg, "filament_reactive_effect_runs_total"); got != 3 {
		t.Fatalf("effect_runs_total = %v, want 3", got)
	}
	// Root scope, signal, memo and effect are all live.
	if got := gatherValue(t, reg, "filament_reactive_nodes_live"); got != 4 {
		t.Fatalf("nodes_live = %v, want 4", got)
	}
}

func TestCollectorOptions(t *testing.T) {
	rt := reactive.New()

	reg := prometheus.NewPedanticRegistry()
	_, err := Register(rt,
		WithRegistry(reg),
		WithNamespace("myapp"),
		WithSubsystem("graph"),
		WithConstLabels(prometheus.Labels{"session": "abc"}),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "myapp_graph_nodes_live" {
			found = true
			labels := mf.GetMetric()[0].GetLabel()
			if len(labels) != 1 || labels[0].GetName() != "session" || labels[0].GetValue() != "abc" {
				t.Fatalf("unexpected labels: %v", labels)
			}
		}
	}
	if !found {
		t.Fatal("myapp_graph_nodes_live not gathered")
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	rt := reactive.New()

	reg := prometheus.NewPedanticRegistry()
	if _, err := Register(rt, WithRegistry(reg)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := Register(rt, WithRegistry(reg)); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
