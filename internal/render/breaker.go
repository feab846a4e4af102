// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package render

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
)

// BreakerName labels the render breaker in metrics and logs.
const BreakerName = "render-start"

// Breaker guards worker starts. After maxFailures consecutive failed binds
// it refuses further starts for timeout, then lets one trial start through.
//
// Host and port come from the render request, so bind errors caused by the
// requested address (in use, not local, forbidden, unresolvable) do not
// count against the breaker. Only failures that would hit any address,
// such as running out of file descriptors, can open it.
//
// The breaker runs on wall-clock time; tests that need it open should fail
// binds rather than wait on timers.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[Worker]
	name string
}

// NewBreaker builds a breaker. maxFailures of 0 is treated as 1.
func NewBreaker(maxFailures uint32, timeout time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Worker](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     timeout,

		IsSuccessful: func(err error) bool {
			return err == nil || isAddressError(err)
		},

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening render breaker")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{cb: cb, name: BreakerName}
}

// Bind binds scene to addr through the breaker.
func (b *Breaker) Bind(scene Scene, addr string) (Worker, error) {
	w, err := b.cb.Execute(func() (Worker, error) {
		return scene.Bind(addr)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrBreakerOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return w, nil
}

// isAddressError reports whether a bind failed because of the address it
// was asked to use.
func isAddressError(err error) bool {
	var addrErr *net.AddrError
	var dnsErr *net.DNSError
	return errors.Is(err, syscall.EADDRINUSE) ||
		errors.Is(err, syscall.EADDRNOTAVAIL) ||
		errors.Is(err, syscall.EACCES) ||
		errors.As(err, &addrErr) ||
		errors.As(err, &dnsErr)
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
