package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func TestThreadCreateWithFirstMessage(t *testing.T) {
	store := newFakeThreadStore()
	svc := NewThreadService(store, testLogger())

	thread, err := svc.Create(context.Background(), "", "What are the odds of a rate cut in March?")
	if err != nil {
		t.Fatal(err)
	}

	if thread.ID == "" {
		t.Error("thread id not assigned")
	}
	if thread.Title != "What are the odds of a rate cut in March?" {
		t.Errorf("title = %q", thread.Title)
	}
	if len(thread.Messages) != 1 || thread.Messages[0].Role != domain.ChatRoleUser {
		t.Errorf("messages = %+v", thread.Messages)
	}

	stored, err := store.Get(context.Background(), thread.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != thread.Title {
		t.Errorf("stored title = %q", stored.Title)
	}
}

func TestThreadCreateTruncatesLongTitle(t *testing.T) {
	svc := NewThreadService(newFakeThreadStore(), testLogger())

	long := strings.Repeat("odds ", 40)
	thread, err := svc.Create(context.Background(), "", long)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(thread.Title, "...") {
		t.Errorf("title not truncated: %q", thread.Title)
	}
	if len([]rune(thread.Title)) > maxTitleLen+3 {
		t.Errorf("title too long: %d runes", len([]rune(thread.Title)))
	}
}

func TestThreadCreateExplicitTitleAndEmptyMessage(t *testing.T) {
	svc := NewThreadService(newFakeThreadStore(), testLogger())

	thread, err := svc.Create(context.Background(), "Macro watch", "")
	if err != nil {
		t.Fatal(err)
	}
	if thread.Title != "Macro watch" {
		t.Errorf("title = %q", thread.Title)
	}
	if len(thread.Messages) != 0 {
		t.Errorf("messages = %+v, want none", thread.Messages)
	}
}

func TestThreadAppendMessageWithMarketContext(t *testing.T) {
	store := newFakeThreadStore()
	svc := NewThreadService(store, testLogger())

	thread, err := svc.Create(context.Background(), "t", "hello")
	if err != nil {
		t.Fatal(err)
	}

	ref := &domain.MarketRef{Provider: domain.ProviderKalshi, Identifier: "FED-25DEC"}
	msg, err := svc.AppendMessage(context.Background(), thread.ID, domain.ChatRoleAssistant, "Signal: yes 70%", ref)
	if err != nil {
		t.Fatal(err)
	}
	if msg.MarketContext == nil || msg.MarketContext.Identifier != "FED-25DEC" {
		t.Errorf("market context = %+v", msg.MarketContext)
	}

	stored, _ := store.Get(context.Background(), thread.ID)
	if len(stored.Messages) != 2 {
		t.Fatalf("stored messages = %d, want 2", len(stored.Messages))
	}
	if stored.Messages[1].Role != domain.ChatRoleAssistant {
		t.Errorf("role = %q", stored.Messages[1].Role)
	}
}

func TestThreadAppendToMissingThread(t *testing.T) {
	svc := NewThreadService(newFakeThreadStore(), testLogger())

	_, err := svc.AppendMessage(context.Background(), "nope", domain.ChatRoleUser, "hi", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestThreadDelete(t *testing.T) {
	store := newFakeThreadStore()
	svc := NewThreadService(store, testLogger())

	thread, _ := svc.Create(context.Background(), "t", "m")
	if err := svc.Delete(context.Background(), thread.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), thread.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
