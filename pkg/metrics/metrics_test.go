package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCollectorCounts(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.NodeCreated("element")
	c.NodeCreated("element")
	c.NodeMounted("element")
	c.NodeUnmounted("element")
	c.NodeDestroyed("element")
	c.TeardownObserved("destroy", 5*time.Millisecond, nil)
	c.TeardownObserved("destroy", time.Millisecond, errors.New("boom"))
	c.BridgeUpdate(atom.BridgeCoalesced)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"created", counterValue(t, c.created.WithLabelValues("element")), 2},
		{"mounted", counterValue(t, c.mounted.WithLabelValues("element")), 1},
		{"unmounted", counterValue(t, c.unmounted.WithLabelValues("element")), 1},
		{"destroyed", counterValue(t, c.destroyed.WithLabelValues("element")), 1},
		{"live", gaugeValue(t, c.live.WithLabelValues("element")), 1},
		{"teardown errors", counterValue(t, c.teardownErrors.WithLabelValues("destroy")), 1},
		{"bridge", counterValue(t, c.bridgeUpdates.WithLabelValues(atom.BridgeCoalesced)), 1},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if got := histogramCount(t, c.teardownDuration.WithLabelValues("destroy")); got != 2 {
		t.Errorf("teardown samples = %d, want 2", got)
	}
}

func TestCollectorOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(
		WithRegistry(reg),
		WithNamespace("ui"),
		WithSubsystem("tree"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{0.1, 1}),
	)
	c.NodeCreated("virtual")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "ui_tree_nodes_created_total" {
			continue
		}
		found = true
		labels := f.GetMetric()[0].GetLabel()
		if len(labels) != 2 || labels[0].GetName() != "app" || labels[0].GetValue() != "demo" {
			t.Errorf("unexpected labels %v", labels)
		}
	}
	if !found {
		t.Error("ui_tree_nodes_created_total not registered")
	}
}

func TestCollectorWithRuntime(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	doc := htmldom.New()
	rt := atom.NewRuntime(doc, atom.WithMetrics(c))

	n := atom.Element("div", nil, atom.Virtual("group", "x"))
	if err := rt.Mount(n, doc.Body(), nil); err != nil {
		t.Fatal(err)
	}
	if got := gaugeValue(t, c.live.WithLabelValues("element")); got != 1 {
		t.Errorf("live elements = %v, want 1", got)
	}

	n.Destroy()
	for _, kind := range []string{"element", "virtual"} {
		if got := gaugeValue(t, c.live.WithLabelValues(kind)); got != 0 {
			t.Errorf("live %s = %v, want 0", kind, got)
		}
		if got := counterValue(t, c.destroyed.WithLabelValues(kind)); got != 1 {
			t.Errorf("destroyed %s = %v, want 1", kind, got)
		}
	}
}
