package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"netops-backend/internal/model"
)

// Outage identifies a device that just transitioned from active to
// down.
type Outage struct {
	Kind string
	ID   string
	Name string
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending outage alerts.
type WorkerPool struct {
	size    int
	jobs    chan Outage
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Outage, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case outage := <-wp.jobs:
			wp.log.Info("worker processing outage",
				zap.Int("worker", id),
				zap.String("kind", outage.Kind),
				zap.String("device", outage.Name))
			wp.sendOutageAlerts(ctx, outage)
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch sends an outage to the worker pool.
func (wp *WorkerPool) Dispatch(outage Outage) {
	wp.jobs <- outage
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Outage {
	return wp.jobs
}

// sendOutageAlerts fans one outage out to every push subscription.
func (wp *WorkerPool) sendOutageAlerts(ctx context.Context, outage Outage) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		wp.log.Error("failed to fetch push subscriptions", zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload := []byte(fmt.Sprintf("%s %s is down", kindLabel(outage.Kind), outage.Name))
	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub, payload)
	}
}

// sendAlert sends a single web push notification.
func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error("failed to send outage alert", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("pruning expired push subscription", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}

func kindLabel(kind string) string {
	switch kind {
	case "pop":
		return "POP"
	case "ap":
		return "AP"
	case "station":
		return "Station"
	default:
		return kind
	}
}
