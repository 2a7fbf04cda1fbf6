package ports

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type portsMetricsCollection struct {
	linesEmitted metric.Int64Counter
	writeErrors  metric.Int64Counter
}

var metrics portsMetricsCollection

func init() {
	const name = "fetchonce/ports"
	meter := otel.Meter(name)

	linesEmitted, err := meter.Int64Counter(
		"ports/lines_emitted",
		metric.WithDescription("Total number of output lines written"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create lines emitted metric: %w", err))
	}

	writeErrors, err := meter.Int64Counter(
		"ports/write_errors",
		metric.WithDescription("Total number of output lines that could not be written"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create write errors metric: %w", err))
	}

	metrics = portsMetricsCollection{
		linesEmitted: linesEmitted,
		writeErrors:  writeErrors,
	}
}
