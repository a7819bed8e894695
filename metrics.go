package jobboard

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for job board metrics.
const meterName = "github.com/VsevolodSauta/jobboard"

// instruments holds the lifecycle counters. With no MeterProvider configured
// the global noop meter is used.
//
// Instruments:
//   - jobboard.job.added, .promoted, .claimed, .finished, .returned,
//     .canceled, .skipped (Int64Counter), with attribute job_type
//   - jobboard.tick.duration (Float64Histogram): OnTick time in seconds
type instruments struct {
	added    metric.Int64Counter
	promoted metric.Int64Counter
	claimed  metric.Int64Counter
	finished metric.Int64Counter
	returned metric.Int64Counter
	canceled metric.Int64Counter
	skipped  metric.Int64Counter
	tick     metric.Float64Histogram
}

func newInstruments(meter metric.Meter) *instruments {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	counter := func(name, desc string) metric.Int64Counter {
		c, _ := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{job}"))
		return c
	}
	tick, _ := meter.Float64Histogram(
		"jobboard.tick.duration",
		metric.WithDescription("Duration of one pending-queue pass in seconds"),
		metric.WithUnit("s"),
	)
	return &instruments{
		added:    counter("jobboard.job.added", "Jobs added to the board"),
		promoted: counter("jobboard.job.promoted", "Jobs promoted from pending to available"),
		claimed:  counter("jobboard.job.claimed", "Jobs claimed by a worker"),
		finished: counter("jobboard.job.finished", "Jobs finished"),
		returned: counter("jobboard.job.returned", "Jobs given back to the pending queue"),
		canceled: counter("jobboard.job.canceled", "Jobs canceled"),
		skipped:  counter("jobboard.job.skipped", "Pending checks that failed a precondition"),
		tick:     tick,
	}
}

func (in *instruments) count(c metric.Int64Counter, jobType string) {
	c.Add(context.Background(), 1, metric.WithAttributes(attribute.String("job_type", jobType)))
}

func (in *instruments) recordTick(elapsed time.Duration) {
	in.tick.Record(context.Background(), elapsed.Seconds())
}
