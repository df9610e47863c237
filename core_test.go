package mainthread

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Construction Tests
// ============================================================================

func TestNew_Defaults(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	assert.Equal(t, 0, core.Pending())
	assert.Empty(t, core.Stats().Ops)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{
			name: "negative capacity",
			opts: []Option{WithQueueCapacity(-1)},
		},
		{
			name: "non-power-of-2 capacity",
			opts: []Option{WithQueueCapacity(100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			assert.Error(t, err)
		})
	}
}

// ============================================================================
// Registration Tests
// ============================================================================

func TestRegister_Validation(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	_, err = Register[int, int](nil, "op", func(int) (int, error) { return 0, nil })
	assert.Error(t, err)

	_, err = Register[int, int](core, "", func(int) (int, error) { return 0, nil })
	assert.Error(t, err)

	_, err = Register[int, int](core, "op", nil)
	assert.ErrorIs(t, err, ErrNilOperation)
}

func TestRegister_DuplicateName(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	_, err = Register(core, "op", func(int) (int, error) { return 0, nil })
	require.NoError(t, err)

	// Same name, even with different types, is a distinct pool violation.
	_, err = RegisterVoid(core, "op", func(string) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateOperation)
}

// ============================================================================
// Dispatch Tests
// ============================================================================

func TestExecute_EmptyQueueIsNoop(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	require.NoError(t, core.Execute())

	stats := core.Stats()
	assert.Equal(t, uint64(1), stats.Drains)
	assert.Equal(t, uint64(0), stats.Executed)
}

func TestExecute_PublishesResult(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	double, err := Register(core, "double", func(n int) (int, error) {
		return n * 2, nil
	})
	require.NoError(t, err)

	var r ResultOf[int]
	require.NoError(t, double.Call(21, &r))
	require.False(t, r.IsReady(), "work must not run on the producer side")

	require.NoError(t, core.Execute())

	require.True(t, r.IsReady())
	assert.Equal(t, 42, r.Get())
}

func TestExecute_GlobalFIFO(t *testing.T) {
	core, err := New(WithQueueCapacity(2))
	require.NoError(t, err)

	var log []int
	record, err := RegisterVoid(core, "record", func(n int) error {
		log = append(log, n)
		return nil
	})
	require.NoError(t, err)

	const n = 100
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		require.NoError(t, record.Call(i, &results[i]))
	}

	require.NoError(t, core.Execute())

	require.Len(t, log, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, i, log[i])
		assert.True(t, results[i].IsReady())
	}
}

func TestExecute_RecyclesRecords(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	op, err := Register(core, "op", func(n int) (int, error) { return n, nil })
	require.NoError(t, err)

	var r ResultOf[int]
	for i := 0; i < 50; i++ {
		require.NoError(t, op.Call(i, &r))
		require.NoError(t, core.Execute())
		require.Equal(t, i, r.Get())
	}

	stats := core.Stats()
	require.Len(t, stats.Ops, 1)
	assert.Equal(t, uint64(50), stats.Ops[0].Calls)
	assert.Equal(t, uint64(1), stats.Ops[0].PoolAllocs, "call/drain cycles must reuse one record")
	assert.Equal(t, 1, stats.Ops[0].PoolIdle)
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestCall_NilResultEscalates(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	ran := false
	op, err := Register(core, "op", func(int) (int, error) {
		ran = true
		return 0, nil
	})
	require.NoError(t, err)

	callErr := op.Call(5, nil)
	require.ErrorIs(t, callErr, ErrNilResult)

	// The intended command was never enqueued; exactly one escalation was.
	require.Equal(t, 1, core.Pending())

	execErr := core.Execute()
	require.ErrorIs(t, execErr, ErrNilResult)
	assert.False(t, ran)
	assert.Equal(t, 0, core.Pending())
}

func TestRaiseError_NilIsIgnored(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	core.RaiseError(nil)
	assert.Equal(t, 0, core.Pending())
}

func TestExecute_EscalationDefersRemainder(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	var log []string
	op, err := RegisterVoid(core, "op", func(name string) error {
		log = append(log, name)
		return nil
	})
	require.NoError(t, err)

	errC := errors.New("asset load failed")

	var rA, rB, rD Result
	require.NoError(t, op.Call("A", &rA))
	require.NoError(t, op.Call("B", &rB))
	core.RaiseError(errC)
	require.NoError(t, op.Call("D", &rD))

	// First drain: A and B execute, C aborts, D stays queued.
	execErr := core.Execute()
	require.ErrorIs(t, execErr, errC)
	assert.Equal(t, []string{"A", "B"}, log)
	assert.True(t, rA.IsReady())
	assert.True(t, rB.IsReady())
	assert.False(t, rD.IsReady())
	require.Equal(t, 1, core.Pending())

	// Next drain services the deferred command.
	require.NoError(t, core.Execute())
	assert.Equal(t, []string{"A", "B", "D"}, log)
	assert.True(t, rD.IsReady())
}

func TestExecute_OperationErrorAbortsDrain(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	boom := errors.New("boom")
	op, err := Register(core, "op", func(int) (int, error) {
		return 0, boom
	})
	require.NoError(t, err)

	var r ResultOf[int]
	require.NoError(t, op.Call(1, &r))

	execErr := core.Execute()
	require.ErrorIs(t, execErr, boom)
	// The failed operation never published; its waiter stays blocked.
	assert.False(t, r.IsReady())
}

func TestExecute_PanicRecovered(t *testing.T) {
	var recovered any
	core, err := New(WithPanicHandler(func(r any) { recovered = r }))
	require.NoError(t, err)

	op, err := RegisterVoid(core, "op", func(int) error {
		panic("scene corrupted")
	})
	require.NoError(t, err)

	var r Result
	require.NoError(t, op.Call(0, &r))

	execErr := core.Execute()
	require.Error(t, execErr)
	assert.Contains(t, execErr.Error(), "scene corrupted")
	assert.Equal(t, "scene corrupted", recovered)

	// The core stays serviceable on later ticks.
	ok, err := RegisterVoid(core, "ok", func(int) error { return nil })
	require.NoError(t, err)
	var r2 Result
	require.NoError(t, ok.Call(0, &r2))
	require.NoError(t, core.Execute())
	assert.True(t, r2.IsReady())
}

func TestExecute_ConcurrentDrainRejected(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	entered := make(chan struct{})
	gate := make(chan struct{})
	block, err := RegisterVoid(core, "block", func(int) error {
		close(entered)
		<-gate
		return nil
	})
	require.NoError(t, err)

	var r Result
	require.NoError(t, block.Call(0, &r))

	done := make(chan error, 1)
	go func() { done <- core.Execute() }()

	<-entered
	assert.ErrorIs(t, core.Execute(), ErrDrainInProgress)

	close(gate)
	require.NoError(t, <-done)
	assert.True(t, r.IsReady())
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestConcurrentProducers_AllResultsReady(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	echo, err := Register(core, "echo", func(n int) (int, error) {
		return n, nil
	})
	require.NoError(t, err)

	const producers = 2
	const perProducer = 1000
	results := make([]ResultOf[int], producers*perProducer)

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				id := p*perProducer + i
				if err := echo.Call(id, &results[id]); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// Drive the owning thread until every command has been drained.
	deadline := time.After(10 * time.Second)
	producersDone := make(chan error, 1)
	go func() { producersDone <- g.Wait() }()

	finished := false
	for !finished {
		select {
		case err := <-producersDone:
			require.NoError(t, err)
			finished = true
		case <-deadline:
			t.Fatal("producers did not finish")
		default:
			require.NoError(t, core.Execute())
		}
	}
	// Final drains for anything enqueued after the last mid-loop drain.
	require.NoError(t, core.Execute())

	for id := range results {
		require.True(t, results[id].IsReady(), "result %d never became ready", id)
		require.Equal(t, id, results[id].Get())
	}

	stats := core.Stats()
	assert.Equal(t, uint64(producers*perProducer), stats.Executed)
	require.Len(t, stats.Ops, 1)
	assert.Equal(t, uint64(producers*perProducer), stats.Ops[0].Calls)
}

// ============================================================================
// Stats Tests
// ============================================================================

func TestStats_Counters(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	a, err := Register(core, "a", func(n int) (int, error) { return n, nil })
	require.NoError(t, err)
	b, err := RegisterVoid(core, "b", func(int) error { return nil })
	require.NoError(t, err)

	var ra ResultOf[int]
	var rb Result
	require.NoError(t, a.Call(1, &ra))
	require.NoError(t, a.Call(2, &ra))
	require.NoError(t, b.Call(3, &rb))
	require.NoError(t, core.Execute())

	stats := core.Stats()
	assert.Equal(t, uint64(3), stats.Enqueued)
	assert.Equal(t, uint64(3), stats.Executed)
	assert.Equal(t, uint64(0), stats.Raised)
	assert.Equal(t, uint64(0), stats.Escalated)
	assert.Equal(t, 0, stats.QueueDepth)

	require.Len(t, stats.Ops, 2)
	assert.Equal(t, "a", stats.Ops[0].Name)
	assert.Equal(t, uint64(2), stats.Ops[0].Calls)
	assert.Equal(t, 2, stats.Ops[0].PoolIdle)
	assert.Equal(t, "b", stats.Ops[1].Name)
	assert.Equal(t, uint64(1), stats.Ops[1].Calls)
}

func TestStats_EscalationCounters(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	core.RaiseError(fmt.Errorf("first"))
	core.RaiseError(fmt.Errorf("second"))

	require.Error(t, core.Execute())
	require.Error(t, core.Execute())
	require.NoError(t, core.Execute())

	stats := core.Stats()
	assert.Equal(t, uint64(2), stats.Raised)
	assert.Equal(t, uint64(2), stats.Escalated)
	assert.Equal(t, uint64(0), stats.Executed)
}
