package service

import (
	"context"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
)

type nopMetrics struct{}

func (nopMetrics) ApplicationSubmitted()                                        {}
func (nopMetrics) ApplicationReviewed(domain.ApplicationStatus, time.Duration) {}
func (nopMetrics) VendorProvisioned()                                          {}
func (nopMetrics) NotificationFailed(string)                                   {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.ApplicationEvent) error { return nil }
func (nopPublisher) Close() error                                          { return nil }

func orNopMetrics(m ports.Metrics) ports.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func orNopPublisher(p ports.EventPublisher) ports.EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// eventPublishTimeout bounds a best-effort publish so a slow broker cannot stall a request.
const eventPublishTimeout = 3 * time.Second
