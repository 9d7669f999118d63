package deflection

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "expsim/deflection"

var tracer = otel.Tracer(instrumentationName)

type seriesInstruments struct {
	rowsLoaded       metric.Int64Counter
	samplesDiscarded metric.Int64Counter
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
}

var (
	instrumentsOnce sync.Once
	seriesMetrics   *seriesInstruments
)

// instruments creates the counters on first use against the global meter
// provider. The global meter forwards to whichever provider is installed
// later.
func instruments() *seriesInstruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		seriesMetrics = &seriesInstruments{
			rowsLoaded: counter(meter, "ldseries_rows_loaded",
				"Rows kept by the loader after stride and truncation"),
			samplesDiscarded: counter(meter, "ldseries_samples_discarded",
				"Samples removed by the ascending envelope and the descending cut"),
			cacheHits: counter(meter, "ldseries_cache_hits",
				"Memoized series values served from the cache"),
			cacheMisses: counter(meter, "ldseries_cache_misses",
				"Series values computed on demand"),
		}
	})
	return seriesMetrics
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return c
}
