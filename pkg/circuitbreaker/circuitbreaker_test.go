package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failed")

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Config{FailureThreshold: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errDownstream })
		require.ErrorIs(t, err, errDownstream)
	}

	assert.Equal(t, StateOpen, b.State())

	// 打开后快速失败，不触达下游
	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	b := New("test", Config{FailureThreshold: 3, Timeout: time.Minute})

	_ = b.Execute(func() error { return errDownstream })
	_ = b.Execute(func() error { return errDownstream })
	require.NoError(t, b.Execute(func() error { return nil }))
	_ = b.Execute(func() error { return errDownstream })
	_ = b.Execute(func() error { return errDownstream })

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("test", Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond, MaxProbes: 1})

	_ = b.Execute(func() error { return errDownstream })
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	// 探测成功，闭合
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := New("test", Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond})

	_ = b.Execute(func() error { return errDownstream })
	time.Sleep(20 * time.Millisecond)

	err := b.Execute(func() error { return errDownstream })
	require.ErrorIs(t, err, errDownstream)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	b := New("test", Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond, MaxProbes: 1})

	_ = b.Execute(func() error { return errDownstream })
	time.Sleep(20 * time.Millisecond)

	probe := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			<-probe
			return nil
		})
	}()

	// 第一个探测在途时，后续请求被拒绝
	time.Sleep(5 * time.Millisecond)
	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpenState)

	close(probe)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	b := New("redis", Config{FailureThreshold: 1, Timeout: time.Minute})

	var transitions []string
	b.OnStateChange = func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	_ = b.Execute(func() error { return errDownstream })
	assert.Equal(t, []string{"CLOSED->OPEN"}, transitions)
}
