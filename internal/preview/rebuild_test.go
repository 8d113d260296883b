package preview

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type rebuildProbe struct {
	mu       sync.Mutex
	triggers []string
	inFlight atomic.Int32
	overlap  atomic.Bool
	fail     bool
}

func (p *rebuildProbe) rebuild(_ context.Context, ev Event) error {
	if p.inFlight.Add(1) > 1 {
		p.overlap.Store(true)
	}
	defer p.inFlight.Add(-1)
	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.triggers = append(p.triggers, ev.Path)
	p.mu.Unlock()
	if p.fail {
		return stderrors.New("build failed")
	}
	return nil
}

func (p *rebuildProbe) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.triggers...)
}

func TestRunRebuilds_OneBuildPerEventWithoutWindow(t *testing.T) {
	events := make(chan Event, 8)
	probe := &rebuildProbe{}
	done := make(chan struct{})
	go func() {
		RunRebuilds(context.Background(), events, 0, probe.rebuild, nil)
		close(done)
	}()

	for _, p := range []string{"a.md", "b.md", "c.md"} {
		events <- Event{Path: p}
	}
	close(events)
	<-done

	require.Equal(t, []string{"a.md", "b.md", "c.md"}, probe.seen())
	require.False(t, probe.overlap.Load(), "rebuilds must not overlap")
}

func TestRunRebuilds_FailuresDoNotStopLoop(t *testing.T) {
	events := make(chan Event, 8)
	probe := &rebuildProbe{fail: true}
	done := make(chan struct{})
	go func() {
		RunRebuilds(context.Background(), events, 0, probe.rebuild, nil)
		close(done)
	}()

	events <- Event{Path: "a.md"}
	events <- Event{Path: "b.md"}
	close(events)
	<-done
	require.Len(t, probe.seen(), 2)
}

func TestRunRebuilds_CoalescesWithinWindow(t *testing.T) {
	events := make(chan Event, 8)
	probe := &rebuildProbe{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunRebuilds(ctx, events, 50*time.Millisecond, probe.rebuild, nil)

	events <- Event{Path: "a.md"}
	events <- Event{Path: "b.md"}
	events <- Event{Path: "c.md"}

	require.Eventually(t, func() bool { return len(probe.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"c.md"}, probe.seen())

	events <- Event{Path: "d.md"}
	require.Eventually(t, func() bool { return len(probe.seen()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunRebuilds_StopsOnCancel(t *testing.T) {
	events := make(chan Event)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunRebuilds(ctx, events, 0, (&rebuildProbe{}).rebuild, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestRunRebuilds_InFlightBuildSurvivesCancel(t *testing.T) {
	events := make(chan Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var buildCtxErr error
	done := make(chan struct{})
	go func() {
		RunRebuilds(ctx, events, 0, func(bctx context.Context, _ Event) error {
			close(started)
			cancel()
			time.Sleep(10 * time.Millisecond)
			buildCtxErr = bctx.Err()
			return nil
		}, nil)
		close(done)
	}()

	events <- Event{Path: "a.md"}
	<-started
	<-done
	require.NoError(t, buildCtxErr)
}
