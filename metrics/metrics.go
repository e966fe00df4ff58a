package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var VectorsIndexed = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sparse_vectors_indexed",
		Help: "Vectors added to inverted index builders",
	},
)

var IndexesBuilt = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sparse_indexes_built",
		Help: "Inverted indexes built",
	},
)

var IndexSizeBytes = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "sparse_index_size_bytes",
		Help: "In-memory size of the last built inverted index",
	},
)

var Searches = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sparse_searches",
		Help: "Top-k searches executed",
	},
)

var SearchResults = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sparse_search_results",
		Help: "Results returned by top-k searches",
	},
)

var IndexFilesSealed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sparse_index_files_sealed",
		Help: "Index files sealed to disk, by outcome",
	},
	[]string{"outcome"},
)
