package render

import (
	"context"
	"testing"
	"time"
)

func TestSendAndAwaitRoundtrip(t *testing.T) {
	ch := NewChannel()
	side := ch.ForWindow()

	go func() {
		req, reply, err := ch.ReceiveNext(context.Background())
		if err != nil {
			t.Errorf("ReceiveNext: %v", err)
			return
		}
		if req.Window != 7 {
			t.Errorf("req.Window = %d, want 7", req.Window)
		}
		reply <- Ack{Outcome: Presented}
	}()

	ack := side.SendAndAwait(&Request{Window: 7})
	if ack.Outcome != Presented {
		t.Errorf("ack.Outcome = %v, want Presented", ack.Outcome)
	}
}

func TestSecondOutstandingRequestPanics(t *testing.T) {
	ch := NewChannel()
	side := ch.ForWindow()

	// first request parks in the channel with nobody receiving
	started := make(chan struct{})
	go func() {
		close(started)
		side.SendAndAwait(&Request{Window: 1})
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	defer func() {
		if recover() == nil {
			t.Error("second outstanding request did not panic")
		}
	}()

	side.SendAndAwait(&Request{Window: 1})
}

func TestReceiveNextHonorsContext(t *testing.T) {
	ch := NewChannel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := ch.ReceiveNext(ctx); err == nil {
		t.Error("ReceiveNext returned no error on a cancelled context")
	}
}

func TestReplyPathIsPerWindow(t *testing.T) {
	ch := NewChannel()
	a := ch.ForWindow()
	b := ch.ForWindow()

	// the arbiter side answers each request over its inline reply path,
	// without knowing which window it talks to
	go func() {
		for i := 0; i < 2; i++ {
			req, reply, err := ch.ReceiveNext(context.Background())
			if err != nil {
				return
			}
			reply <- Ack{Outcome: Presented, QueuedAt: time.Unix(int64(req.Window), 0)}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ack := b.SendAndAwait(&Request{Window: 2})
		if ack.QueuedAt.Unix() != 2 {
			t.Errorf("window 2 got ack stamped %d", ack.QueuedAt.Unix())
		}
	}()

	ack := a.SendAndAwait(&Request{Window: 1})
	if ack.QueuedAt.Unix() != 1 {
		t.Errorf("window 1 got ack stamped %d", ack.QueuedAt.Unix())
	}

	<-done
}
