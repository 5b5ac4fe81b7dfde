package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// BillsRecordedTotal counts recorded bills by caller kind (admin, customer).
	BillsRecordedTotal *prometheus.CounterVec
	// ItemsAddedTotal counts catalog items registered.
	ItemsAddedTotal prometheus.Counter
	// PriceUpdatesTotal counts item price updates.
	PriceUpdatesTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BillsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_recorded_total",
			Help:      "Count of bills computed and recorded, by caller kind.",
		}, []string{"kind"})
		ItemsAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_items_added_total",
			Help:      "Count of catalog items registered.",
		})
		PriceUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_price_updates_total",
			Help:      "Count of catalog price updates.",
		})

		registerDomainCollector(reg, BillsRecordedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BillsRecordedTotal = v
			}
		})
		registerDomainCollector(reg, ItemsAddedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ItemsAddedTotal = v
			}
		})
		registerDomainCollector(reg, PriceUpdatesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PriceUpdatesTotal = v
			}
		})
	})
}

func registerDomainCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
