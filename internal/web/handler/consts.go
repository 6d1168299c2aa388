package handler

const (
	// PluginPath is the route receiving named host requests.
	PluginPath = "/plugin/:request"

	// MetricsPath exposes the Prometheus metrics.
	MetricsPath = "/metrics"

	// ErrNilAppFatalLogMsg is used if the app or a collaborator pointer is nil.
	ErrNilAppFatalLogMsg = "app, cfg or dispatcher is nil"
)
