package core

import (
	"sync/atomic"
	"time"

	"github.com/uniyakcom/strand/internal/support/mpsc"
	"github.com/uniyakcom/strand/internal/support/sema"
)

// Mailbox 邮箱 = MPSC 队列 + 计数信号量。
// 入队对任意 goroutine 开放；出队仅限归属的 worker goroutine。
type Mailbox struct {
	queue  *mpsc.Queue[Message]
	sem    *sema.Sema
	closed atomic.Bool
}

// NewMailbox 创建邮箱。
func NewMailbox() *Mailbox {
	return &Mailbox{
		queue: mpsc.New[Message](),
		sem:   sema.New(),
	}
}

// Enqueue 入队消息。
// 幂等唤醒：仅在信号量观测值 <= 0（消费者可能在等）时 Post，
// 多余的 Post 由消费循环的重试自然排干。
// 已关闭的邮箱直接走 Discard 路径（等价于消息永不被消费）。
func (m *Mailbox) Enqueue(msg Message) {
	if m.closed.Load() {
		msg.Discard()
		return
	}
	m.queue.Enqueue(msg)
	if m.sem.Get() <= 0 {
		m.sem.Post()
	}
}

// Dequeue 阻塞出队。仅限归属 goroutine。
func (m *Mailbox) Dequeue() Message {
	for {
		if msg, ok := m.queue.Dequeue(); ok {
			return msg
		}
		m.sem.Wait()
	}
}

// DequeueTimeout 带超时出队。超时返回 (nil, false)。仅限归属 goroutine。
func (m *Mailbox) DequeueTimeout(d time.Duration) (Message, bool) {
	deadline := time.Now().Add(d)
	for {
		if msg, ok := m.queue.Dequeue(); ok {
			return msg, true
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			return nil, false
		}
		if m.sem.TimedWait(remain) {
			// 超时后最后再探一次队列，消除 post/enqueue 窗口
			if msg, ok := m.queue.Dequeue(); ok {
				return msg, true
			}
			return nil, false
		}
	}
}

// Close 关闭邮箱并排空剩余消息（逐条 Discard）。
// 仅限归属 goroutine 在循环退出后调用：排空本身就是一次单消费者出队。
// 关闭瞬间仍在途的入队可能逃过排空，这些消息交给 GC，
// 语义等同于永不消费的消息（与邮箱存活期超过线程的情形一致）。
func (m *Mailbox) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	for {
		msg, ok := m.queue.Dequeue()
		if !ok {
			return
		}
		msg.Discard()
	}
}

// Closed 返回邮箱是否已关闭。
func (m *Mailbox) Closed() bool {
	return m.closed.Load()
}
