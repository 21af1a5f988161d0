package alert

import (
	"context"
	"log/slog"
	"sync"
)

// MemoryPublisher keeps alerts in process. Used when Kafka is not configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	alerts []Alert
	logger *slog.Logger
}

func NewMemoryPublisher(logger *slog.Logger) *MemoryPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MemoryPublisher{logger: logger}
}

func (p *MemoryPublisher) Publish(ctx context.Context, a Alert) error {
	p.mu.Lock()
	p.alerts = append(p.alerts, a)
	p.mu.Unlock()
	p.logger.InfoContext(ctx, "manager alert",
		"alert_type", string(a.Type),
		"tenant_id", a.TenantID.String(),
		"store_id", a.StoreID.String(),
		"manager", a.ManagerUsername,
		"title", a.Title,
	)
	return nil
}

// Alerts returns a snapshot of everything published so far.
func (p *MemoryPublisher) Alerts() []Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Alert(nil), p.alerts...)
}
