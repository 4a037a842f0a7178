// Package mpsc 提供多生产者/单消费者无锁队列 — 侵入式链表 + tail-swap
//
// 入队无等待：仅一次 atomic Swap + 一次 Store
//   - 生产者: 新建节点 → Swap 进 tail（seq-cst 线性化点）→ 发布前驱的 next
//   - 消费者: 读 head.next；为空即返回，不阻塞
//
// 顺序保证：
//   - 单生产者内部 FIFO（Swap 的程序序）
//   - 跨生产者的全局顺序 = tail Swap 的线性化顺序
//
// 安全条件：
//   - 消费者唯一（Dequeue 并发调用是未定义行为）
//   - head 仅消费者访问，无需原子
package mpsc

import "sync/atomic"

// node 侵入式链表节点。被弹出后由 GC 回收。
type node[T any] struct {
	next    atomic.Pointer[node[T]]
	payload T
}

// Queue 多生产者/单消费者队列。
// 零值不可用，必须 New：队列恒持有一个哨兵节点。
type Queue[T any] struct {
	head *node[T] // 消费者独占
	tail atomic.Pointer[node[T]]
}

// New 创建队列，预置哨兵节点。
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := &node[T]{}
	q.head = sentinel
	q.tail.Store(sentinel)
	return q
}

// Enqueue 生产者入队 — 无等待
// Swap 是线性化点；next 的 Store 发布前驱，消费者看到链接时
// 负载必然已就绪（Go 原子为 seq-cst，强于所需的 release）。
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{payload: v}
	prev := q.tail.Swap(n)
	prev.next.Store(n)
}

// Dequeue 消费者出队。队列空返回 false，不阻塞。
// 取出负载的节点清空负载（help GC）后成为新哨兵，旧 head 交给 GC。
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	next := q.head.next.Load()
	if next == nil {
		return zero, false
	}
	v := next.payload
	next.payload = zero // 新哨兵不保留负载引用
	q.head = next
	return v, true
}
