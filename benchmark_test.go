package mainthread

import (
	"testing"
)

// ============================================================================
// Enqueue / Drain Throughput
// ============================================================================

func BenchmarkCallThenDrain(b *testing.B) {
	core, _ := New(WithQueueCapacity(2048))
	op, _ := Register(core, "echo", func(n int) (int, error) { return n, nil })

	var r ResultOf[int]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = op.Call(i, &r)
		if i%1024 == 1023 {
			_ = core.Execute()
		}
	}
	_ = core.Execute()

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "commands/sec")
}

func BenchmarkRoundTrip(b *testing.B) {
	core, _ := New()
	op, _ := Register(core, "echo", func(n int) (int, error) { return n, nil })

	var r ResultOf[int]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = op.Call(i, &r)
		_ = core.Execute()
		_ = r.Get()
	}
}

func BenchmarkParallelProducers(b *testing.B) {
	core, _ := New(WithQueueCapacity(4096))
	op, _ := RegisterVoid(core, "noop", func(int) error { return nil })

	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			_ = core.Execute()
			select {
			case <-stop:
				_ = core.Execute()
				return
			default:
			}
		}
	}()

	b.RunParallel(func(pb *testing.PB) {
		var r Result
		for pb.Next() {
			_ = op.Call(0, &r)
		}
	})

	close(stop)
	<-drained

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "commands/sec")
}

// ============================================================================
// Pool Overhead
// ============================================================================

func BenchmarkPoolRoundTrip(b *testing.B) {
	var p recordPool[callOf[int, int]]

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.release(p.acquire())
	}
}

func BenchmarkResultCycle(b *testing.B) {
	var r ResultOf[int]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Reset()
		r.Ready(i)
		_ = r.Get()
	}
}
