package ocr

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// newBreaker builds the single circuit breaker guarding the OCR engine
// collaborator. Unlike the multi-service breaker bank this pattern is
// normally used for, a pipeline run has exactly one OCR backend, so one
// breaker instance is shared across the whole page fan-out.
func newBreaker(log *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ocr-engine",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.WithFields(logrus.Fields{"breaker": name, "from": from, "to": to}).Warn("ocr circuit breaker state change")
			}
		},
	})
}
