package strand

import (
	"testing"
	"time"
)

// pair 双参信号负载（多参信号用结构体表达）
type pair struct{ a, b int }

// sumSlot 累加 a+b 的测试槽对象
type sumSlot struct {
	Object
	slot     *Slot[pair]
	counter  int
	callback func()
}

func newSumSlot() *sumSlot {
	s := &sumSlot{}
	s.slot = NewSlot(&s.Object, func(p pair) {
		s.counter += p.a + p.b
		if s.callback != nil {
			s.callback()
		}
	})
	return s
}

// pairEdge 测试边对象
type pairEdge struct {
	Object
	edge *Edge[pair]
}

func newPairEdge() *pairEdge {
	e := &pairEdge{}
	e.edge = NewEdge[pair](&e.Object)
	return e
}

// affineSumSlot 带亲和性断言的累加槽：回调必须跑在归属邮箱上
type affineSumSlot struct {
	Object
	slot         *Slot[pair]
	counter      int
	wrongMailbox bool
}

func newAffineSumSlot() *affineSumSlot {
	s := &affineSumSlot{}
	s.slot = NewSlot(&s.Object, func(p pair) {
		if !s.Anchor().Monitor().SameMailbox() {
			s.wrongMailbox = true
		}
		s.counter += p.a + p.b
	})
	return s
}

// TestScenarioLocalEmit 测试本线程发射：连接后每次 emit 同步直达
func TestScenarioLocalEmit(t *testing.T) {
	defer CleanupTimers()
	sig := newPairEdge()
	slt := newSumSlot()

	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)

	if slt.counter != 0 {
		t.Fatalf("counter before emit: got %d, want 0", slt.counter)
	}
	sig.edge.Emit(pair{1, 2})
	sig.edge.Emit(pair{1, 2})
	if slt.counter != 6 {
		t.Fatalf("counter after two emits: got %d, want 6", slt.counter)
	}
}

// TestScenarioEdgeThroughEdge 测试 edge 级联代理与中途断开
func TestScenarioEdgeThroughEdge(t *testing.T) {
	sig := newPairEdge()
	proxy := newPairEdge()
	slt := newSumSlot()

	Connect(&sig.Object, sig.edge, &proxy.Object, proxy.edge.AsSlot())
	Connect(&proxy.Object, proxy.edge, &slt.Object, slt.slot)

	sig.edge.Emit(pair{1, 2})
	if slt.counter != 3 {
		t.Fatalf("counter after proxied emit: got %d, want 3", slt.counter)
	}

	proxy.edge.Disconnect(slt.slot)
	sig.edge.Emit(pair{1, 2})
	if slt.counter != 3 {
		t.Fatalf("counter after disconnect: got %d, want 3", slt.counter)
	}
}

// TestScenarioCrossThreadDelivery 测试跨线程投递：
// 槽迁到 worker 后，主线程发起连接与发射，信号在 worker 上消费
func TestScenarioCrossThreadDelivery(t *testing.T) {
	w := NewWorker()

	slt := newAffineSumSlot()
	w.GrabObject(&slt.Object)

	sig := newPairEdge()
	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)
	sig.edge.Emit(pair{1, 2})

	w.PostQuitMessage()
	w.Join()

	if slt.counter != 3 {
		t.Fatalf("counter after cross-thread emit: got %d, want 3", slt.counter)
	}
	if slt.wrongMailbox {
		t.Fatal("slot callback ran off its owning mailbox")
	}
}

// TestScenarioDisconnectDuringEmit 测试回调中自断开：
// 第一次 emit 送达后断开，第二次不再送达
func TestScenarioDisconnectDuringEmit(t *testing.T) {
	sig := newPairEdge()
	slt := newSumSlot()
	slt.callback = func() {
		slt.slot.Disconnect(&sig.Object, sig.edge)
	}

	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)

	sig.edge.Emit(pair{1, 2})
	sig.edge.Emit(pair{1, 2})
	if slt.counter != 3 {
		t.Fatalf("counter: got %d, want 3 (only first emit delivered)", slt.counter)
	}
}

// TestScenarioBlockQueueSameThread 测试 BlockQueue 同线程不自死锁：
// 对端在本邮箱时退化为同步直调
func TestScenarioBlockQueueSameThread(t *testing.T) {
	sig := newPairEdge()
	slt := newSumSlot()

	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot, BlockQueue)

	sig.edge.Emit(pair{1, 2})
	if slt.counter != 3 {
		t.Fatalf("counter: got %d, want 3", slt.counter)
	}
}

// TestScenarioBlockQueueCrossThread 测试 BlockQueue 跨线程：
// emit 返回时信号已被对端消费完毕
func TestScenarioBlockQueueCrossThread(t *testing.T) {
	w := NewWorker()

	slt := newAffineSumSlot()
	sig := newPairEdge()
	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot, BlockQueue)

	w.GrabObject(&slt.Object)

	sig.edge.Emit(pair{1, 2})
	if slt.counter != 3 {
		t.Fatalf("counter right after blocking emit: got %d, want 3", slt.counter)
	}

	w.PostQuitMessage()
	w.Join()
	if slt.wrongMailbox {
		t.Fatal("slot callback ran off its owning mailbox")
	}
}

// quitOnTimeout 收到超时信号即投自退出消息的对象
type quitOnTimeout struct {
	Object
	slot  *Slot[None]
	fired int
}

func newQuitOnTimeout() *quitOnTimeout {
	q := &quitOnTimeout{}
	q.slot = NewSlot(&q.Object, func(None) {
		q.fired++
		PostSelfQuitMessage()
	})
	return q
}

// TestScenarioTimerLoop 测试定时器驱动消息循环退出
func TestScenarioTimerLoop(t *testing.T) {
	defer CleanupTimers()

	timer := NewTimer(50*time.Millisecond, false)
	q := newQuitOnTimeout()

	Connect(&timer.Object, timer.Timeout, &q.Object, q.slot)
	timer.Activate()

	start := time.Now()
	MessageLoop()
	if q.fired != 1 {
		t.Fatalf("timer fired %d times, want 1", q.fired)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Fatalf("loop returned before timer period: %v", elapsed)
	}
	if timer.Active() {
		t.Fatal("one-shot timer must deactivate after firing")
	}
}

// TestScenarioRepeatingTimer 测试周期定时器：触发单调累计，k·P 下界
func TestScenarioRepeatingTimer(t *testing.T) {
	defer CleanupTimers()

	timer := NewTimer(20*time.Millisecond, true)
	count := 0
	q := &quitOnTimeout{}
	q.slot = NewSlot(&q.Object, func(None) {
		count++
		if count == 3 {
			PostSelfQuitMessage()
		}
	})

	Connect(&timer.Object, timer.Timeout, &q.Object, q.slot)
	timer.Activate()

	start := time.Now()
	MessageLoop()
	if count != 3 {
		t.Fatalf("repeating timer fired %d times, want 3", count)
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Fatalf("three periods cannot elapse in %v", elapsed)
	}
	if !timer.Active() {
		t.Fatal("repeating timer should stay active")
	}
	timer.Deactivate()
}

// TestScenarioWaitForSignal 测试 WaitForSignal 接到定时器信号
func TestScenarioWaitForSignal(t *testing.T) {
	defer CleanupTimers()

	timer := NewTimer(50*time.Millisecond, false)
	caught := WaitForSignal(&timer.Object, timer.Timeout, func() bool {
		timer.Activate()
		return true
	})
	if !caught {
		t.Fatal("WaitForSignal should catch the timer signal")
	}
}

// TestScenarioWaitForSignalEdgeDestroyed 测试被等的边先亡：返回 false
func TestScenarioWaitForSignalEdgeDestroyed(t *testing.T) {
	defer CleanupTimers()

	sig := newPairEdge()
	caught := WaitForSignal(&sig.Object, sig.edge, func() bool {
		sig.Destroy()
		return true
	})
	if caught {
		t.Fatal("WaitForSignal must report false when the edge dies first")
	}
}

// TestScenarioWaitForSignalStarterRefuses 测试 starter 返回假立即放弃
func TestScenarioWaitForSignalStarterRefuses(t *testing.T) {
	sig := newPairEdge()
	caught := WaitForSignal(&sig.Object, sig.edge, func() bool {
		return false
	})
	if caught {
		t.Fatal("refused starter must yield false")
	}
}

// triggerSlot 单发触发器：收到信号执行动作
type triggerSlot struct {
	Object
	slot   *Slot[None]
	action func()
}

func newTriggerSlot(action func()) *triggerSlot {
	k := &triggerSlot{action: action}
	k.slot = NewSlot(&k.Object, func(None) { k.action() })
	return k
}

// noneEdge 无参测试边对象
type noneEdge struct {
	Object
	edge *Edge[None]
}

func newNoneEdge() *noneEdge {
	e := &noneEdge{}
	e.edge = NewEdge[None](&e.Object)
	return e
}

// TestScenarioWaitForDisconnected 测试等待槽的连接清空：
// 对端边在 worker 上被销毁，半断开消息抵达后循环返回
func TestScenarioWaitForDisconnected(t *testing.T) {
	w := NewWorker()

	sig := newPairEdge()
	w.GrabObject(&sig.Object)

	slt := newSumSlot()
	Connect(&sig.Object, sig.edge, &slt.Object, slt.slot)

	// worker 上的处决者：销毁 sig（sig 已亲和 worker，就地析构合法）
	killer := newTriggerSlot(func() { sig.Destroy() })
	w.GrabObject(&killer.Object)

	trigger := newNoneEdge()
	Connect(&trigger.Object, trigger.edge, &killer.Object, killer.slot)
	trigger.edge.Emit(None{})

	WaitForDisconnected(slt.slot)
	if slt.slot.IsConnected() {
		t.Fatal("slot should be fully disconnected")
	}

	w.PostQuitMessage()
	w.Join()
}
