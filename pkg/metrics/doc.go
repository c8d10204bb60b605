/*
Package metrics provides Prometheus metrics and JSON health endpoints for
reportwatch.

All metrics are registered with the default registry at package init and
exposed through Handler:

	reportwatch_connection_state              gauge   0/1/2 (disconnected/connecting/connected)
	reportwatch_connect_attempts_total        counter {result}
	reportwatch_session_errors_total          counter {kind}
	reportwatch_fetches_total                 counter {source, status}
	reportwatch_fetch_duration_seconds        histogram {source}
	reportwatch_rows_inserted_total           counter
	reportwatch_rows_removed_total            counter
	reportwatch_snapshot_events               gauge
	reportwatch_categories_total              gauge   {enabled}
	reportwatch_api_requests_total            counter {method, status}
	reportwatch_api_request_duration_seconds  histogram {method}
	reportwatch_api_log_entries               gauge   {list}

Use a Timer to measure an operation:

	timer := metrics.NewTimer()
	reports, err := fetch(ctx)
	timer.ObserveDurationVec(metrics.FetchDuration, source)

A Collector samples a StatsSource (the session manager) on an interval for
gauges that are cheaper to read than to maintain on every change.

# Health

Components report their state with RegisterComponent/UpdateComponent.
HealthHandler returns 503 when any component is unhealthy; ReadyHandler
returns 503 until every component named in SetCriticalComponents is
registered and healthy. LivenessHandler always returns 200.
*/
package metrics
