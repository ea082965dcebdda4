// Package metrics exports node lifecycle measurements to Prometheus.
//
// A Collector implements atom.Metrics:
//
//	c := metrics.New(metrics.WithRegistry(reg))
//	rt := atom.NewRuntime(doc, atom.WithMetrics(c))
//
// Metrics exported (namespace "carbyne" by default):
//
//	nodes_created_total{kind}
//	nodes_mounted_total{kind}
//	nodes_unmounted_total{kind}
//	nodes_destroyed_total{kind}
//	nodes_live{kind}
//	teardown_duration_seconds{op}
//	teardown_errors_total{op}
//	bridge_updates_total{mode}
package metrics
