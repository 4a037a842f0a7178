package mpsc

import (
	"sync"
	"testing"
)

// TestEmptyDequeue 测试空队列出队不阻塞
func TestEmptyDequeue(t *testing.T) {
	q := New[int]()
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue on empty queue should report empty")
	}
}

// TestFIFOSingleProducer 测试单生产者 FIFO
func TestFIFOSingleProducer(t *testing.T) {
	q := New[int]()
	const n = 1000
	for i := 0; i < n; i++ {
		q.Enqueue(i)
	}
	for i := 0; i < n; i++ {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatalf("queue empty at %d, want %d items", i, n)
		}
		if v != i {
			t.Fatalf("out of order: got %d at position %d", v, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("queue should be drained")
	}
}

// TestFIFOMultiProducer 测试多生产者：逐生产者 FIFO、消息不丢
func TestFIFOMultiProducer(t *testing.T) {
	type item struct {
		producer int
		seq      int
	}
	q := New[item]()

	const producers = 8
	const perProducer = 5000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(item{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	lastSeq := make([]int, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}
	total := 0
	for {
		it, ok := q.Dequeue()
		if !ok {
			break
		}
		total++
		if it.seq != lastSeq[it.producer]+1 {
			t.Fatalf("producer %d: got seq %d after %d", it.producer, it.seq, lastSeq[it.producer])
		}
		lastSeq[it.producer] = it.seq
	}
	if total != producers*perProducer {
		t.Fatalf("lost messages: got %d, want %d", total, producers*perProducer)
	}
}

// TestConcurrentProduceConsume 测试边生产边消费（单消费者）
func TestConcurrentProduceConsume(t *testing.T) {
	q := New[int]()
	const producers = 4
	const perProducer = 10000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(i)
			}
		}()
	}

	got := 0
	want := producers * perProducer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for got < want {
			if _, ok := q.Dequeue(); ok {
				got++
			}
		}
	}()

	wg.Wait()
	<-done
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}
