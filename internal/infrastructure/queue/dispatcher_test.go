package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type sent struct {
	to, subject, body string
}

type recordingSender struct {
	mu   sync.Mutex
	got  []sent
	err  error
	done chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 16)}
}

func (r *recordingSender) record(s sent) error {
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func (r *recordingSender) snapshot() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.got...)
}

type mailer struct{ *recordingSender }

func (m mailer) Send(_ context.Context, to, subject, body string) error {
	return m.record(sent{to: to, subject: subject, body: body})
}

type sms struct{ *recordingSender }

func (s sms) Send(_ context.Context, phone, message string) error {
	return s.record(sent{to: phone, body: message})
}

func wait(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	mail := newRecordingSender()
	text := newRecordingSender()
	d := NewDispatcher(2, mailer{mail}, sms{text}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Delivery{Channel: domain.ChannelEmail, RecipientID: "u1", To: "a@b.c", Subject: "Hi", Body: "body"})
	d.Enqueue(ports.Delivery{Channel: domain.ChannelSMS, RecipientID: "u1", To: "+100", Body: "text"})

	wait(t, mail.done, 1)
	wait(t, text.done, 1)

	if got := mail.snapshot(); len(got) != 1 || got[0].to != "a@b.c" || got[0].subject != "Hi" {
		t.Errorf("unexpected mail deliveries: %+v", got)
	}
	if got := text.snapshot(); len(got) != 1 || got[0].to != "+100" || got[0].body != "text" {
		t.Errorf("unexpected sms deliveries: %+v", got)
	}
}

func TestDispatcher_PreservesPerRecipientOrder(t *testing.T) {
	mail := newRecordingSender()
	d := NewDispatcher(4, mailer{mail}, sms{newRecordingSender()}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	subjects := []string{"first", "second", "third"}
	for _, s := range subjects {
		d.Enqueue(ports.Delivery{Channel: domain.ChannelEmail, RecipientID: "same-user", To: "x@y.z", Subject: s})
	}
	wait(t, mail.done, len(subjects))

	got := mail.snapshot()
	for i, s := range subjects {
		if got[i].subject != s {
			t.Fatalf("delivery %d: got %q, want %q", i, got[i].subject, s)
		}
	}
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	mail := newRecordingSender()
	mail.err = errors.New("smtp down")
	d := NewDispatcher(1, mailer{mail}, sms{newRecordingSender()}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Delivery{Channel: domain.ChannelEmail, RecipientID: "u1", Subject: "one"})
	d.Enqueue(ports.Delivery{Channel: domain.ChannelEmail, RecipientID: "u1", Subject: "two"})
	wait(t, mail.done, 2)

	if n := len(mail.snapshot()); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, nil, nil, zerolog.Nop())
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}
