package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikempw/failover/core/clock"
)

func TestVirtualAdvanceWakesSleeper(t *testing.T) {
	v := clock.NewVirtual(time.Unix(0, 0))
	woke := make(chan struct{})
	go func() {
		_ = v.Sleep(context.Background(), 10*time.Second)
		close(woke)
	}()

	v.Advance(5 * time.Second)
	select {
	case <-woke:
		t.Fatal("sleeper woke before deadline")
	case <-time.After(50 * time.Millisecond):
	}

	v.Advance(5 * time.Second)
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("sleeper did not wake after deadline")
	}
	assert.Equal(t, time.Unix(10, 0), v.Now())
}
