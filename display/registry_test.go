package display

import (
	"testing"
	"time"
)

func TestRefreshIntervalOf(t *testing.T) {
	reg := NewRegistry()
	reg.AddMonitor(Monitor{ID: 1, RefreshInterval: 8 * time.Millisecond})

	if got := reg.RefreshIntervalOf(1); got != 8*time.Millisecond {
		t.Errorf("RefreshIntervalOf(1) = %v, want 8ms", got)
	}

	// unknown monitors fall back to the default
	if got := reg.RefreshIntervalOf(99); got != DefaultRefreshInterval {
		t.Errorf("RefreshIntervalOf(99) = %v, want %v", got, DefaultRefreshInterval)
	}
}

func TestMonitorOfReassignsAfterDisconnect(t *testing.T) {
	reg := NewRegistry()
	reg.AddMonitor(Monitor{ID: 1, RefreshInterval: 16 * time.Millisecond})
	reg.AddMonitor(Monitor{ID: 2, RefreshInterval: 8 * time.Millisecond})
	reg.AttachWindow(7, 2)

	if got := reg.MonitorOf(7); got != 2 {
		t.Fatalf("MonitorOf(7) = %v, want 2", got)
	}

	reg.RemoveMonitor(2)

	// the window must be back on a live monitor before the next
	// scheduling decision
	if got := reg.MonitorOf(7); got != 1 {
		t.Errorf("MonitorOf(7) after disconnect = %v, want 1", got)
	}
}

func TestMonitorOfUnknownWindowUsesPrimary(t *testing.T) {
	reg := NewRegistry()
	reg.AddMonitor(Monitor{ID: 3, RefreshInterval: 16 * time.Millisecond})

	if got := reg.MonitorOf(42); got != 3 {
		t.Errorf("MonitorOf(42) = %v, want primary 3", got)
	}
}

func TestSubscribeDeliversChanges(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe()
	defer reg.Unsubscribe(sub)

	reg.AddMonitor(Monitor{ID: 1, Name: "DP-1", RefreshInterval: 16 * time.Millisecond})
	reg.AttachWindow(5, 1)
	reg.SetRefreshInterval(1, 8*time.Millisecond)

	want := []ChangeKind{MonitorAdded, WindowMoved, IntervalChanged}
	for i, kind := range want {
		select {
		case c := <-sub.C:
			if c.Kind != kind {
				t.Errorf("change %d = %v, want %v", i, c.Kind, kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("change %d (%v) never delivered", i, kind)
		}
	}

	reg.RemoveMonitor(1)

	c := <-sub.C
	if c.Kind != MonitorRemoved {
		t.Fatalf("change = %v, want MonitorRemoved", c.Kind)
	}
	if len(c.Windows) != 1 || c.Windows[0] != 5 {
		t.Errorf("affected windows = %v, want [5]", c.Windows)
	}
}

func TestAttachWindowDedupes(t *testing.T) {
	reg := NewRegistry()
	reg.AddMonitor(Monitor{ID: 1, RefreshInterval: 16 * time.Millisecond})

	sub := reg.Subscribe()
	defer reg.Unsubscribe(sub)

	reg.AttachWindow(5, 1)
	reg.AttachWindow(5, 1) // same assignment, no second note

	<-sub.C
	select {
	case c := <-sub.C:
		t.Errorf("unexpected change %v after no-op reattach", c.Kind)
	default:
	}
}

func TestSlowSubscriberGetsResync(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe()
	defer reg.Unsubscribe(sub)

	// overflow the subscription buffer without draining it
	for i := 0; i < 64; i++ {
		reg.AddMonitor(Monitor{ID: MonitorID(i + 1), RefreshInterval: 16 * time.Millisecond})
	}

	sawResync := false
	for {
		select {
		case c := <-sub.C:
			if c.Kind == Resync {
				sawResync = true
			}
			continue
		default:
		}
		break
	}

	if !sawResync {
		t.Error("overflowed subscriber never received a Resync note")
	}
}
