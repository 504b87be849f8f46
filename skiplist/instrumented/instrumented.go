package instrumented

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Hakuto4838/skipset/skiplist"
)

const (
	OpInsert   = "insert"
	OpErase    = "erase"
	OpContains = "contains"
	OpClear    = "clear"
)

// Metrics 收集集合操作的次數、延遲與大小
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.GaugeVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "set operations by implementation, operation and boolean result",
		}, []string{"impl", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "set operation latency",
			Buckets:   prometheus.ExponentialBuckets(50e-9, 2, 16),
		}, []string{"impl", "op"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "size",
			Help:      "number of keys currently stored",
		}, []string{"impl"}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.ops, m.duration, m.size}
}

// Register 將所有 collector 註冊到 reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register set metrics")
		}
	}
	return nil
}

func (m *Metrics) observe(impl, op string, result bool, start time.Time) {
	m.duration.WithLabelValues(impl, op).Observe(time.Since(start).Seconds())
	m.ops.WithLabelValues(impl, op, strconv.FormatBool(result)).Inc()
}

// Set 包裝任一 skiplist.Set，記錄每次呼叫
type Set[T any] struct {
	impl    string
	inner   skiplist.Set[T]
	metrics *Metrics
}

func Wrap[T any](impl string, inner skiplist.Set[T], m *Metrics) *Set[T] {
	s := &Set[T]{impl: impl, inner: inner, metrics: m}
	s.updateSize()
	return s
}

func (s *Set[T]) updateSize() {
	s.metrics.size.WithLabelValues(s.impl).Set(float64(s.inner.Size()))
}

func (s *Set[T]) Insert(key T) bool {
	start := time.Now()
	ok := s.inner.Insert(key)
	s.metrics.observe(s.impl, OpInsert, ok, start)
	if ok {
		s.updateSize()
	}
	return ok
}

func (s *Set[T]) Erase(key T) bool {
	start := time.Now()
	ok := s.inner.Erase(key)
	s.metrics.observe(s.impl, OpErase, ok, start)
	if ok {
		s.updateSize()
	}
	return ok
}

func (s *Set[T]) Contains(key T) bool {
	start := time.Now()
	ok := s.inner.Contains(key)
	s.metrics.observe(s.impl, OpContains, ok, start)
	return ok
}

func (s *Set[T]) Empty() bool {
	return s.inner.Empty()
}

func (s *Set[T]) Size() int {
	return s.inner.Size()
}

func (s *Set[T]) Clear() {
	start := time.Now()
	s.inner.Clear()
	s.metrics.observe(s.impl, OpClear, true, start)
	s.updateSize()
}

// Unwrap 回傳被包裝的集合
func (s *Set[T]) Unwrap() skiplist.Set[T] {
	return s.inner
}
