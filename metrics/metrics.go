// Package metrics exposes Prometheus collectors for guest and host calls.
//
// A nil *Collector is valid and records nothing, so engines can carry one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
)

// OutcomeSuccess is the outcome label of a successful call. Failed calls are
// labelled with the error's ErrorDetail type ("guest", "trap", "dispatch", ...).
const OutcomeSuccess = "success"

// Unregistered replaces the binding, namespace and operation labels of host
// calls for keys with no registered handler, keeping the label set bounded
// whatever keys a guest sends.
const Unregistered = "unregistered"

const namespace = "wapc"

// Collector groups the engine metrics.
type Collector struct {
	GuestCalls        *prometheus.CounterVec
	GuestCallDuration *prometheus.HistogramVec
	HostCalls         *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		GuestCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guest_calls_total",
				Help:      "Guest calls by operation and outcome",
			},
			[]string{"operation", "outcome"}),
		GuestCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "guest_call_duration_seconds",
				Help:      "Duration of guest calls",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"}),
		HostCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "host_calls_total",
				Help:      "Host calls made by guests, by key and outcome",
			},
			[]string{"binding", "namespace", "operation", "outcome"}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.GuestCalls, c.GuestCallDuration, c.HostCalls} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Outcome returns the label value for a call result.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return errors.ToErrorDetail(err).Type
}

// ObserveGuestCall records a completed guest call.
func (c *Collector) ObserveGuestCall(operation string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.GuestCalls.WithLabelValues(operation, Outcome(err)).Inc()
	c.GuestCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveHostCall records a completed host call. Keys that are not registered
// are counted under Unregistered.
func (c *Collector) ObserveHostCall(key entities.HostCallKey, registered bool, err error) {
	if c == nil {
		return
	}
	if !registered {
		key = entities.NewHostCallKey(Unregistered, Unregistered, Unregistered)
	}
	c.HostCalls.WithLabelValues(key.Binding, key.Namespace, key.Operation, Outcome(err)).Inc()
}
