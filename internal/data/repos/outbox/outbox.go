// Package outbox persists events in the same transaction as the aggregate
// state that produced them, then lets a dispatcher publish them after the
// commit. That is what guarantees observers never see an effect that could
// still roll back, without a distributed transaction across the database
// and the message transport.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Message is one committed, not-necessarily-published event. Seq preserves
// enqueue order within and across transactions of one database.
type Message struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Seq         int64          `gorm:"autoIncrement;uniqueIndex;column:seq"`
	Channel     string         `gorm:"not null;column:channel"`
	EventType   string         `gorm:"not null;column:event_type"`
	Payload     datatypes.JSON `gorm:"not null;column:payload"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at"`
	PublishedAt *time.Time     `gorm:"index;column:published_at"`
}

func (Message) TableName() string { return "outbox_message" }

type Repo interface {
	// Append joins the caller's transaction; it never commits on its own.
	Append(dbc dbctx.Context, msgs []*Message) error
	FetchPending(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
	messaging.OutboxSource
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "OutboxRepo")}
}

func (r *repo) Append(dbc dbctx.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	now := time.Now().UTC()
	for _, m := range msgs {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
	}
	return tx.WithContext(dbc.Ctx).Create(&msgs).Error
}

func (r *repo) FetchPending(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*Message
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repo) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", now).Error
}

// Pending implements messaging.OutboxSource.
func (r *repo) Pending(ctx context.Context, limit int) ([]messaging.PendingMessage, error) {
	msgs, err := r.FetchPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]messaging.PendingMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messaging.PendingMessage{
			ID:      m.ID,
			Channel: m.Channel,
			Body:    []byte(m.Payload),
		})
	}
	return out, nil
}
