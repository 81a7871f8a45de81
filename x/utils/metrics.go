package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator counting delivered transactions and measuring how
// long they take, per message path and outcome.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ custody.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors. A nil
// registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "tx",
			Name:      "delivered_total",
			Help:      "Number of delivered transactions by message path and result code.",
		}, []string{"path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "custody",
			Subsystem: "tx",
			Name:      "deliver_duration_seconds",
			Help:      "Time spent delivering a transaction by message path.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.total, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.ErrHuman, err.Error())
		}
	}
	return m, nil
}

// Check just passes the request along
func (m *Metrics) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver records the outcome of the transaction.
func (m *Metrics) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	path := custody.GetPath(tx)
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	m.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	code := "0"
	if err != nil {
		c, _ := errors.ABCIInfo(err, false)
		code = strconv.FormatUint(uint64(c), 10)
	}
	m.total.WithLabelValues(path, code).Inc()
	return res, err
}

// Total returns the counter of delivered transactions with given path and
// result code.
func (m *Metrics) Total(path string, code uint32) prometheus.Counter {
	return m.total.WithLabelValues(path, strconv.FormatUint(uint64(code), 10))
}
