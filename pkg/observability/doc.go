/*
Package observability turns automation lifecycle hooks into operational signals.

Metrics exports Prometheus counters and histograms for runs and phases;
LogHooks writes each lifecycle event to a structured logger. Both return
automator.Hooks, which can be combined with automator.ComposeHooks:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := automator.ComposeHooks(m.Hooks(), observability.LogHooks(logger))
	a, _ := automator.New(script, cfg, automator.WithHooks(hooks))
*/
package observability
