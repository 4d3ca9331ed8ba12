// Package notify persists and delivers the notifications produced by the
// allocation engine. Emission is fire-and-forget: a failure here is logged
// and never rolls back the allocation that triggered it.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// Message is one notification for one applicant.
type Message struct {
	RecipientID int64
	Type        string
	Body        string
	Link        string
}

// Emitter accepts notifications emitted by the engine after a committed
// state change.
type Emitter interface {
	Emit(ctx context.Context, msgs ...Message)
}

// StoreEmitter writes notification rows and hands each recipient to the push
// worker pool for best-effort delivery.
type StoreEmitter struct {
	db   *gorm.DB
	pool *WorkerPool
	log  logrus.FieldLogger
}

// NewStoreEmitter creates an emitter. The worker pool may be nil when push
// delivery is not configured.
func NewStoreEmitter(db *gorm.DB, pool *WorkerPool, log logrus.FieldLogger) *StoreEmitter {
	return &StoreEmitter{db: db, pool: pool, log: log}
}

// Emit persists each message and dispatches push delivery.
func (s *StoreEmitter) Emit(ctx context.Context, msgs ...Message) {
	for _, m := range msgs {
		row := model.Notification{
			RecipientID: m.RecipientID,
			Type:        m.Type,
			Message:     m.Body,
			Link:        m.Link,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"recipient_id": m.RecipientID,
				"type":         m.Type,
			}).Error("failed to persist notification")
			continue
		}
		if s.pool != nil {
			s.pool.Dispatch(m.RecipientID, []byte(m.Body))
		}
	}
}
