package strand

import (
	"runtime"

	"github.com/uniyakcom/strand/core"
)

// Worker 工作者：独占一个邮箱的专属 goroutine，跑消息循环。
// 归属该邮箱的所有端点的内部状态只在这条 goroutine 上变更。
type Worker struct {
	mbox   *core.Mailbox
	done   chan struct{}
	name   string
	lockOS bool
}

// NewWorker 创建工作者并启动消息循环。
// 退出路径：PostQuitMessage → 循环展开 → 排空邮箱（剩余消息逐条
// Discard，半连接在此回滚）→ 解绑 → Done。
func NewWorker(opts ...WorkerOption) *Worker {
	w := newWorker(opts)
	go w.run(nil)
	return w
}

// NewWorkerFunc 创建工作者 goroutine 但以 fn 取代消息循环：
// 邮箱照常绑定，fn 内可自行调用 MessageLoop（含谓词）或完全不进循环。
// fn 返回即退出。
func NewWorkerFunc(fn func(), opts ...WorkerOption) *Worker {
	w := newWorker(opts)
	go w.run(fn)
	return w
}

func newWorker(opts []WorkerOption) *Worker {
	w := &Worker{
		mbox: core.NewMailbox(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) run(fn func()) {
	if w.lockOS {
		// 绑定 OS 线程，保持端点工作集的 cache 热度
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	core.BindLocalMailbox(w.mbox)
	defer func() {
		CleanupTimers()
		// 先排空再解绑：排空触发的回滚若路由回本邮箱，仍按本地亲和处理
		w.mbox.Close()
		core.UnbindLocalMailbox()
		close(w.done)
	}()
	if fn != nil {
		fn()
		return
	}
	MessageLoop()
}

// Mailbox 返回工作者的邮箱。
func (w *Worker) Mailbox() *core.Mailbox {
	return w.mbox
}

// Name 返回工作者名字（未设置为空串）。
func (w *Worker) Name() string {
	return w.name
}

// GrabObject 把对象重新亲和到本工作者的邮箱。
// 对象端点连接列表非空、或仍有指向旧邮箱的在途消息时迁移是
// 未定义行为：先断开、静默后再迁。
func (w *Worker) GrabObject(o *Object) {
	o.Anchor().MoveToMailbox(w.mbox)
}

// PostQuitMessage 向工作者邮箱投退出消息（协作式退出）。
func (w *Worker) PostQuitMessage() {
	w.mbox.Enqueue(core.QuitMessage{})
}

// Join 等待工作者退出。
func (w *Worker) Join() {
	<-w.done
}

// Done 工作者退出通知通道。
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// ─── 消息循环 ───────────────────────────────────────────────────────

// MessageLoop 在当前 goroutine 上跑消息循环，直到消费到退出消息、
// 或给定谓词变为假。单次迭代：
//
//  1. 触发本 goroutine 定时器列表头部全部到期项
//  2. 谓词求值（若有），假即返回
//  3. 有待触发定时器 → 以距最近 next_hit 的间隔做带超时出队；
//     否则阻塞出队
//  4. recover 保护下消费：退出哨兵展开循环；用户 slot 的 panic
//     吞掉计数（槽故障不拖垮 worker）
func MessageLoop(pred ...func() bool) {
	mbox := core.LocalMailbox()
	tl := localTimers()
	var cond func() bool
	if len(pred) > 0 {
		cond = pred[0]
	}
	for {
		tl.fireDue()
		if cond != nil && !cond() {
			return
		}
		var msg core.Message
		if d, ok := tl.nextDelay(); ok {
			m, got := mbox.DequeueTimeout(d)
			if !got {
				continue // 超时：回到循环头触发定时器
			}
			msg = m
		} else {
			msg = mbox.Dequeue()
		}
		if consume(msg) {
			return
		}
	}
}

// consume 消费一条消息。返回是否收到退出哨兵。
func consume(msg core.Message) (quit bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(core.QuitLoop); ok {
				quit = true
				return
			}
			statPanics.Add(1)
			if lg := loadLogger(); lg != nil {
				lg.Error("strand: slot panic swallowed", "panic", r)
			}
		}
	}()
	msg.Consume()
	statConsumed.Add(1)
	return false
}

// PostSelfQuitMessage 向当前 goroutine 的邮箱投退出消息。
func PostSelfQuitMessage() {
	core.LocalMailbox().Enqueue(core.QuitMessage{})
}
