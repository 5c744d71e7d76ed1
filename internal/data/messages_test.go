package data

import (
	"context"
	"os"
	"testing"

	"github.com/PaulBabatuyi/privtalk/internal/db"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Integration tests; require MONGODB_URI set externally.

func newTestStores(t *testing.T) (*UsersStore, *MessagesStore, func()) {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri)
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// start from clean collections
	_ = c.UsersCollection().Drop(ctx)
	_ = c.MessagesCollection().Drop(ctx)

	cleanup := func() {
		_ = c.UsersCollection().Drop(context.Background())
		_ = c.MessagesCollection().Drop(context.Background())
		_ = c.Close(context.Background())
	}

	return NewUsersStore(c.UsersCollection()), NewMessagesStore(c.MessagesCollection()), cleanup
}

func TestMessagesInsertAndHistory(t *testing.T) {
	users, msgs, cleanup := newTestStores(t)
	defer cleanup()

	ctx := context.Background()

	alice, err := users.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	bob, err := users.CreateUser(ctx, "bob@example.com", "Bob", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := msgs.Insert(ctx, &Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "hi bob"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := msgs.Insert(ctx, &Message{SenderID: bob.ID, ReceiverID: alice.ID, Text: "hello alice"}); err != nil {
		t.Fatalf("Insert 2 failed: %v", err)
	}

	// history must come back oldest first regardless of query direction
	history, err := msgs.HistoryBetween(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("HistoryBetween failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Text != "hi bob" || history[1].Text != "hello alice" {
		t.Fatalf("history not in chronological order: %q, %q", history[0].Text, history[1].Text)
	}

	// unset fileType defaults to text on insert
	if history[0].FileType != FileTypeText {
		t.Fatalf("expected default fileType %q, got %q", FileTypeText, history[0].FileType)
	}

	last, err := msgs.LastBetween(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("LastBetween failed: %v", err)
	}
	if last == nil || last.Text != "hello alice" {
		t.Fatalf("expected newest message, got %+v", last)
	}
}

func TestMessagesMarkReadAndCount(t *testing.T) {
	users, msgs, cleanup := newTestStores(t)
	defer cleanup()

	ctx := context.Background()

	alice, _ := users.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	bob, _ := users.CreateUser(ctx, "bob@example.com", "Bob", "hash")

	for i := 0; i < 3; i++ {
		if _, err := msgs.Insert(ctx, &Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "ping"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	unread, err := msgs.CountUnread(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 3 {
		t.Fatalf("expected 3 unread, got %d", unread)
	}

	if err := msgs.MarkRead(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, err = msgs.CountUnread(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread after MarkRead, got %d", unread)
	}

	// idempotent: a second bulk flip changes nothing and returns no error
	if err := msgs.MarkRead(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("second MarkRead failed: %v", err)
	}
}

func TestMessagesSearchQuotesRegex(t *testing.T) {
	users, msgs, cleanup := newTestStores(t)
	defer cleanup()

	ctx := context.Background()

	alice, _ := users.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	bob, _ := users.CreateUser(ctx, "bob@example.com", "Bob", "hash")

	_, _ = msgs.Insert(ctx, &Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "price is $5.00"})
	_, _ = msgs.Insert(ctx, &Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "priceXisX5Y00"})

	// "$5.00" must match literally, not as a regex where "." matches any rune
	results, err := msgs.Search(ctx, alice.ID, bob.ID, "$5.00", 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 literal match, got %d", len(results))
	}

	// case-insensitive
	results, err = msgs.Search(ctx, alice.ID, bob.ID, "PRICE", 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 case-insensitive matches, got %d", len(results))
	}
}

func TestMessagesDelete(t *testing.T) {
	users, msgs, cleanup := newTestStores(t)
	defer cleanup()

	ctx := context.Background()

	alice, _ := users.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	bob, _ := users.CreateUser(ctx, "bob@example.com", "Bob", "hash")

	saved, err := msgs.Insert(ctx, &Message{SenderID: alice.ID, ReceiverID: bob.ID, Text: "oops"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := msgs.DeleteByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}

	if _, err := msgs.GetByID(ctx, saved.ID); err != ErrMessageNotFound {
		t.Fatalf("expected ErrMessageNotFound after delete, got %v", err)
	}

	// deleting an unknown id reports not found
	if err := msgs.DeleteByID(ctx, bson.NewObjectID()); err != ErrMessageNotFound {
		t.Fatalf("expected ErrMessageNotFound for unknown id, got %v", err)
	}
}
