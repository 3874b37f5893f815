/*
Package observability turns dialogue lifecycle events into Prometheus metrics and
structured log lines.

Both are exposed as domain.LifecycleHooks so they can be merged and handed to the Bot:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
