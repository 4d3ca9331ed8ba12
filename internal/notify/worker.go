package notify

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// PushSender sends a single web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

type pushJob struct {
	recipientID int64
	payload     []byte
}

// WorkerPool delivers push notifications to applicants' registered browsers.
type WorkerPool struct {
	size    int
	jobs    chan pushJob
	db      *gorm.DB
	options *webpush.Options
	sender  PushSender
	log     logrus.FieldLogger
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int, db *gorm.DB, options *webpush.Options, log logrus.FieldLogger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan pushJob, size*4),
		db:      db,
		options: options,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Dispatch queues one delivery. The queue is bounded; when it is full the
// job is dropped rather than blocking the caller.
func (wp *WorkerPool) Dispatch(recipientID int64, payload []byte) {
	select {
	case wp.jobs <- pushJob{recipientID: recipientID, payload: payload}:
	default:
		wp.log.WithField("recipient_id", recipientID).Warn("push queue full, dropping notification")
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.WithField("worker", id).Debug("push worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.deliver(ctx, job)
		case <-ctx.Done():
			wp.log.WithField("worker", id).Debug("push worker shutting down")
			return
		}
	}
}

// deliver sends the payload to every subscription the recipient registered.
func (wp *WorkerPool) deliver(ctx context.Context, job pushJob) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("applicant_id = ?", job.recipientID).
		Find(&subscriptions).Error
	if err != nil {
		wp.log.WithError(err).WithField("recipient_id", job.recipientID).
			Error("failed to fetch push subscriptions")
		return
	}

	for _, sub := range subscriptions {
		wp.send(ctx, sub, job.payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.options)
	if err != nil {
		wp.log.WithError(err).WithField("endpoint", sub.Endpoint).Error("push delivery failed")
		return
	}
	defer resp.Body.Close()

	// 410 Gone means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		wp.log.WithField("endpoint", sub.Endpoint).Info("subscription expired, deleting")
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.WithError(err).WithField("endpoint", sub.Endpoint).
				Error("failed to delete expired subscription")
		}
	}
}
