package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts order submission outcomes.
	CheckoutTotal *prometheus.CounterVec
	// DeliveryQuoteTotal counts delivery quote resolutions by kind.
	DeliveryQuoteTotal *prometheus.CounterVec
	// CouponResolutionTotal counts coupon lookups by result.
	CouponResolutionTotal *prometheus.CounterVec
	// SettingsFetchTotal counts settings snapshot fetch outcomes.
	SettingsFetchTotal *prometheus.CounterVec
	// OrderTotalAmount observes the computed order total in currency units.
	OrderTotalAmount *prometheus.HistogramVec
	// ConfirmationTaskTotal counts confirmation task deliveries.
	ConfirmationTaskTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of order submission outcomes.",
		}, []string{"region", "result"})
		DeliveryQuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_quote_total",
			Help:      "Count of delivery quote resolutions by quote kind.",
		}, []string{"kind", "free"})
		CouponResolutionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_resolution_total",
			Help:      "Count of coupon lookups by result.",
		}, []string{"result"})
		SettingsFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_fetch_total",
			Help:      "Count of settings snapshot fetches by outcome.",
		}, []string{"result"})
		OrderTotalAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Distribution of computed order totals in currency units.",
			Buckets:   []float64{25, 50, 100, 150, 200, 300, 500, 1000},
		}, []string{"region"})
		ConfirmationTaskTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmation_task_total",
			Help:      "Count of order confirmation task outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, DeliveryQuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DeliveryQuoteTotal = v
			}
		})
		mustRegisterCollector(reg, CouponResolutionTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CouponResolutionTotal = v
			}
		})
		mustRegisterCollector(reg, SettingsFetchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SettingsFetchTotal = v
			}
		})
		mustRegisterCollector(reg, OrderTotalAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				OrderTotalAmount = v
			}
		})
		mustRegisterCollector(reg, ConfirmationTaskTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ConfirmationTaskTotal = v
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
