package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts pricing quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// DiscountTotal counts discount computations by target mode and outcome.
	DiscountTotal *prometheus.CounterVec
	// DiscountExceededTotal counts discount requests above the break-even ceiling.
	DiscountExceededTotal prometheus.Counter
	// ExtractTotal counts text extraction requests by how much was recognised.
	ExtractTotal *prometheus.CounterVec
	// ProductCacheTotal counts catalog list cache lookups by result.
	ProductCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quote_total",
			Help:      "Count of pricing quote computations by outcome.",
		}, []string{"result"})
		DiscountTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_discount_total",
			Help:      "Count of discount computations by target mode and outcome.",
		}, []string{"mode", "result"})
		DiscountExceededTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_discount_exceeded_total",
			Help:      "Number of discount requests above the break-even ceiling.",
		})
		ExtractTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_requests_total",
			Help:      "Count of text extraction requests by recognition result.",
		}, []string{"result"})
		ProductCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_cache_lookups_total",
			Help:      "Count of catalog list cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountExceededTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountExceededTotal = v
			}
		})
		mustRegisterCollector(reg, ExtractTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ExtractTotal = v
			}
		})
		mustRegisterCollector(reg, ProductCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ProductCacheTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
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
