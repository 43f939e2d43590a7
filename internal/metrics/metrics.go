// Package metrics exposes Prometheus counters for the interesting domain
// events: logins, list and item creation, rejected items and share grants.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Logins counts authentication attempts by outcome:
	// ok, rejected, transport_error.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superlists_logins_total",
		Help: "Authentication attempts by outcome.",
	}, []string{"result"})

	// ListsCreated counts successfully created lists.
	ListsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_lists_created_total",
		Help: "Lists created.",
	})

	// ItemsCreated counts successfully added items, first items included.
	ItemsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_items_created_total",
		Help: "Items added to lists.",
	})

	// ItemRejections counts validation failures by reason: empty, duplicate.
	ItemRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superlists_item_rejections_total",
		Help: "Item submissions rejected by validation.",
	}, []string{"reason"})

	// Shares counts share grants (idempotent re-shares included).
	Shares = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_shares_total",
		Help: "List share grants.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
