package outbox_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	"github.com/vetdesk/frontdesk-backend/internal/data/repos/testutil"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/platform/dbctx"
)

// The repo methods other than Append run on the root connection, so these
// tests write through the root handle and clean up the rows they created.
func repoUnderTest(t *testing.T) (outbox.Repo, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	repo := outbox.NewRepo(db, testutil.Logger(t))
	t.Cleanup(func() {
		db.Where("channel = ?", t.Name()).Delete(&outbox.Message{})
	})
	return repo, context.Background()
}

func appendMessages(t *testing.T, repo outbox.Repo, ctx context.Context, bodies ...string) []*outbox.Message {
	t.Helper()
	msgs := make([]*outbox.Message, 0, len(bodies))
	for _, body := range bodies {
		msgs = append(msgs, &outbox.Message{
			Channel:   t.Name(),
			EventType: messaging.EventEntityCreated,
			Payload:   []byte(body),
		})
	}
	if err := repo.Append(dbctx.Context{Ctx: ctx}, msgs); err != nil {
		t.Fatalf("Append: %v", err)
	}
	return msgs
}

func pendingOnChannel(t *testing.T, repo outbox.Repo, ctx context.Context) []messaging.PendingMessage {
	t.Helper()
	all, err := repo.Pending(ctx, 1000)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	out := make([]messaging.PendingMessage, 0, len(all))
	for _, m := range all {
		if m.Channel == t.Name() {
			out = append(out, m)
		}
	}
	return out
}

func TestAppendAssignsIDsAndPreservesOrder(t *testing.T) {
	repo, ctx := repoUnderTest(t)

	msgs := appendMessages(t, repo, ctx, `{"n":1}`, `{"n":2}`, `{"n":3}`)
	for i, m := range msgs {
		if m.ID == uuid.Nil {
			t.Fatalf("message %d has no id after append", i)
		}
	}

	pending := pendingOnChannel(t, repo, ctx)
	if len(pending) != 3 {
		t.Fatalf("%d pending messages, want 3", len(pending))
	}
	for i, m := range pending {
		if m.ID != msgs[i].ID {
			t.Fatalf("pending order broken at %d", i)
		}
	}
}

func TestMarkPublishedRemovesFromPending(t *testing.T) {
	repo, ctx := repoUnderTest(t)

	msgs := appendMessages(t, repo, ctx, `{"n":1}`, `{"n":2}`)
	if err := repo.MarkPublished(ctx, []uuid.UUID{msgs[0].ID}); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}

	pending := pendingOnChannel(t, repo, ctx)
	if len(pending) != 1 {
		t.Fatalf("%d pending messages, want 1", len(pending))
	}
	if pending[0].ID != msgs[1].ID {
		t.Fatal("wrong message left pending")
	}

	// marking again is harmless
	if err := repo.MarkPublished(ctx, []uuid.UUID{msgs[0].ID}); err != nil {
		t.Fatalf("second MarkPublished: %v", err)
	}
}

func TestAppendNothingIsANoOp(t *testing.T) {
	repo, ctx := repoUnderTest(t)
	if err := repo.Append(dbctx.Context{Ctx: ctx}, nil); err != nil {
		t.Fatalf("Append nil: %v", err)
	}
	if got := pendingOnChannel(t, repo, ctx); len(got) != 0 {
		t.Fatalf("%d pending messages, want 0", len(got))
	}
}
