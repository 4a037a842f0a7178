package strand

import (
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// TestConcurrentEmitters 测试多 goroutine 各持一条边并发发射到同一
// worker 槽：信号不丢、静默后槽侧记录清零
func TestConcurrentEmitters(t *testing.T) {
	w := NewWorker()

	slt := newSumSlot()
	w.GrabObject(&slt.Object)

	const emitters = 8
	const perEmitter = 500

	var g errgroup.Group
	for e := 0; e < emitters; e++ {
		g.Go(func() error {
			// 边端点归本 goroutine 所有：连接与发射全程本地亲和
			sig := newPairEdge()
			Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)
			for i := 0; i < perEmitter; i++ {
				sig.edge.Emit(pair{1, 2})
			}
			Disconnect(&sig.Object, sig.edge, &slt.Object, slt.slot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	w.PostQuitMessage()
	w.Join()

	want := emitters * perEmitter * 3
	if slt.counter != want {
		t.Fatalf("counter: got %d, want %d", slt.counter, want)
	}
	if len(slt.slot.conns) != 0 {
		t.Fatalf("slot records after churn: got %d, want 0", len(slt.slot.conns))
	}
}

// TestConnectionOrderPreserved 测试同一 emit 内同邮箱多对端按连接序送达
func TestConnectionOrderPreserved(t *testing.T) {
	w := NewWorker()

	type tagSlot struct {
		Object
		slot *Slot[pair]
	}
	var order []int

	mk := func(tag int) *tagSlot {
		s := &tagSlot{}
		s.slot = NewSlot(&s.Object, func(pair) {
			order = append(order, tag) // 两个槽同邮箱，回调串行
		})
		w.GrabObject(&s.Object)
		return s
	}
	first := mk(1)
	second := mk(2)

	sig := newPairEdge()
	Connect(&sig.Object, sig.edge, &first.Object, first.slot)
	Connect(&sig.Object, sig.edge, &second.Object, second.slot)

	const rounds = 50
	for i := 0; i < rounds; i++ {
		sig.edge.Emit(pair{1, 2})
	}

	w.PostQuitMessage()
	w.Join()

	if len(order) != rounds*2 {
		t.Fatalf("deliveries: got %d, want %d", len(order), rounds*2)
	}
	for i := 0; i < rounds; i++ {
		if order[2*i] != 1 || order[2*i+1] != 2 {
			t.Fatalf("connection order violated at round %d: %v", i, order[2*i:2*i+2])
		}
	}
}

// TestThirdThreadConnect 测试第三方线程发起的连接走 FullConnect：
// 两个半边最终各自落到所有者线程
func TestThirdThreadConnect(t *testing.T) {
	w1 := NewWorker()
	w2 := NewWorker()

	sig := newPairEdge()
	w1.GrabObject(&sig.Object)

	slt := newAffineSumSlot()
	w2.GrabObject(&slt.Object)

	// main 既不是边的线程也不是槽的线程
	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)
	time.Sleep(100 * time.Millisecond) // 半边跨两跳落位

	// 发射必须在边的线程上：经由触发器转到 w1
	fire := newTriggerSlot(func() { sig.edge.Emit(pair{1, 2}) })
	w1.GrabObject(&fire.Object)
	trigger := newNoneEdge()
	Connect(&trigger.Object, trigger.edge, &fire.Object, fire.slot)
	trigger.edge.Emit(None{})
	time.Sleep(100 * time.Millisecond)

	w1.PostQuitMessage()
	w2.PostQuitMessage()
	w1.Join()
	w2.Join()

	if slt.counter != 3 {
		t.Fatalf("counter: got %d, want 3", slt.counter)
	}
	if slt.wrongMailbox {
		t.Fatal("slot callback ran off its owning mailbox")
	}
}

// TestBlockQueueUnblocksOnWorkerQuit 测试目标 worker 退出时
// BlockQueue 发射不被吊死（Discard 路径解除等待）
func TestBlockQueueUnblocksOnWorkerQuit(t *testing.T) {
	w := NewWorker()

	slt := newSumSlot()
	sig := newPairEdge()
	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot, BlockQueue)
	w.GrabObject(&slt.Object)

	w.PostQuitMessage()
	w.Join() // 邮箱已关闭：信号必然走 Discard 路径

	sig.edge.Emit(pair{1, 2}) // Discard 解除阻塞，否则这里吊死
	if slt.counter != 0 {
		t.Fatalf("discarded blocking signal must not deliver: got %d", slt.counter)
	}
}

// TestConcurrentChurn 测试连接/断开/发射风暴下的最终一致：
// 静默后槽侧记录清零、计数吻合
func TestConcurrentChurn(t *testing.T) {
	w := NewWorker()

	slt := newSumSlot()
	w.GrabObject(&slt.Object)

	const churners = 6
	const rounds = 200

	var emitted atomic.Int64
	var g errgroup.Group
	for c := 0; c < churners; c++ {
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				sig := newPairEdge()
				Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)
				sig.edge.Emit(pair{1, 2})
				emitted.Add(1)
				Disconnect(&sig.Object, sig.edge, &slt.Object, slt.slot)
				sig.Destroy()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	w.PostQuitMessage()
	w.Join()

	want := int(emitted.Load()) * 3
	if slt.counter != want {
		t.Fatalf("counter: got %d, want %d", slt.counter, want)
	}
	if len(slt.slot.conns) != 0 {
		t.Fatalf("slot records after churn: got %d, want 0", len(slt.slot.conns))
	}
}
