package strand

import "github.com/uniyakcom/strand/core"

// 协议消息集。每种消息把一步跨线程协议序列化为入队工作项，
// 在目标端点归属的 goroutine 上本地执行。
//
// 所有权纪律：destLink / apartLink 是消息持有的弱链接副本，
// Consume 或 Discard 恰好触发其一，二者都必须把链接交还
// （转移给记录，或 Release）。ident 字段只是匹配身份，不持引用。

// ─── 信号 ───────────────────────────────────────────────────────────

// signalMsg 排队投递的信号：对端存活则调用槽回调，否则静默丢弃
// （对象在 emit 与消费之间死亡时这正是期望行为）。
type signalMsg[T any] struct {
	link core.WeakLink
	slot *Slot[T]
	arg  T
}

func (m *signalMsg[T]) Consume() {
	defer m.link.Release()
	if !m.link.Alive() {
		statDropped.Add(1)
		return
	}
	m.slot.receive(m.arg)
}

func (m *signalMsg[T]) Discard() {
	m.link.Release()
}

// ─── 阻塞包装 ───────────────────────────────────────────────────────

// blockMsg BlockQueue 投递的包装：消费完内层消息后唤醒发送方。
// Discard 同样唤醒 —— 目标 worker 退出时发送方不会被吊死。
type blockMsg struct {
	inner core.Message
	done  chan struct{}
}

func (m *blockMsg) Consume() {
	defer close(m.done)
	m.inner.Consume()
}

func (m *blockMsg) Discard() {
	defer close(m.done)
	m.inner.Discard()
}

// ─── 半连接 ─────────────────────────────────────────────────────────

// halfConnectSlotMsg 槽侧半连接：交付后 apartLink 存入槽的记录。
// 目标已死则回滚对侧已连上的半边；Discard（从未被消费）同样回滚 ——
// 这是连接协议不留悬挂半边的关键补偿路径。
type halfConnectSlotMsg[T any] struct {
	destLink  core.WeakLink
	dest      *Slot[T]
	apartLink core.WeakLink
	apart     *Edge[T]
}

func (m *halfConnectSlotMsg[T]) Consume() {
	if m.destLink.Alive() {
		m.dest.halfConnectLocal(m.apartLink, m.apart)
		m.destLink.Release()
		return
	}
	m.rollback()
}

func (m *halfConnectSlotMsg[T]) Discard() {
	m.rollback()
}

// rollback 向 edge 侧发补偿半断开（身份 = 本该连上的槽所有者）。
func (m *halfConnectSlotMsg[T]) rollback() {
	ident := m.destLink.Monitor()
	m.destLink.Release()
	if m.apartLink.Alive() {
		m.apart.halfDisconnectRouted(m.apartLink, m.dest, ident)
	} else {
		m.apartLink.Release()
	}
}

// halfConnectEdgeMsg 边侧半连接：交付后 apartLink 与投递模式存入
// 边的记录。回滚路径与槽侧对称。
type halfConnectEdgeMsg[T any] struct {
	destLink  core.WeakLink
	dest      *Edge[T]
	apartLink core.WeakLink
	apart     *Slot[T]
	mode      core.DeliveryMode
}

func (m *halfConnectEdgeMsg[T]) Consume() {
	if m.destLink.Alive() {
		m.dest.halfConnectLocalEdge(m.apartLink, m.apart, m.mode)
		m.destLink.Release()
		return
	}
	m.rollback()
}

func (m *halfConnectEdgeMsg[T]) Discard() {
	m.rollback()
}

func (m *halfConnectEdgeMsg[T]) rollback() {
	ident := m.destLink.Monitor()
	m.destLink.Release()
	if m.apartLink.Alive() {
		m.apart.halfDisconnectRouted(m.apartLink, m.dest, ident)
	} else {
		m.apartLink.Release()
	}
}

// ─── 半断开 ─────────────────────────────────────────────────────────

// halfDisconnectSlotMsg 槽侧半断开：目标存活则移除匹配
// (edge 指针, ident) 的记录。目标已死无事可做（列表随对象废弃）。
type halfDisconnectSlotMsg[T any] struct {
	destLink core.WeakLink
	dest     *Slot[T]
	apart    *Edge[T]
	ident    *core.Monitor
}

func (m *halfDisconnectSlotMsg[T]) Consume() {
	defer m.destLink.Release()
	if m.destLink.Alive() {
		m.dest.halfDisconnectLocal(m.apart, m.ident)
	}
}

func (m *halfDisconnectSlotMsg[T]) Discard() {
	m.destLink.Release()
}

// halfDisconnectEdgeMsg 边侧半断开。
type halfDisconnectEdgeMsg[T any] struct {
	destLink core.WeakLink
	dest     *Edge[T]
	apart    *Slot[T]
	ident    *core.Monitor
}

func (m *halfDisconnectEdgeMsg[T]) Consume() {
	defer m.destLink.Release()
	if m.destLink.Alive() {
		m.dest.halfDisconnectLocal(m.apart, m.ident)
	}
}

func (m *halfDisconnectEdgeMsg[T]) Discard() {
	m.destLink.Release()
}

// ─── 全连接 / 全断开 ────────────────────────────────────────────────

// fullConnectMsg 跨线程发起的 connect：两端都活着才在槽的
// goroutine 上重放本地 connect（此时两个半边都未动，无需回滚）。
type fullConnectMsg[T any] struct {
	destLink  core.WeakLink
	dest      *Slot[T]
	apartLink core.WeakLink
	apart     *Edge[T]
	mode      core.DeliveryMode
}

func (m *fullConnectMsg[T]) Consume() {
	if m.destLink.Alive() && m.apartLink.Alive() {
		m.dest.connect(m.destLink, m.apartLink, m.apart, m.mode)
		return
	}
	m.destLink.Release()
	m.apartLink.Release()
}

func (m *fullConnectMsg[T]) Discard() {
	m.destLink.Release()
	m.apartLink.Release()
}

// fullDisconnectSlotMsg 跨线程发起的槽侧 disconnect。
type fullDisconnectSlotMsg[T any] struct {
	destLink core.WeakLink
	dest     *Slot[T]
	apart    *Edge[T]
	ident    *core.Monitor
}

func (m *fullDisconnectSlotMsg[T]) Consume() {
	defer m.destLink.Release()
	if m.destLink.Alive() {
		m.dest.disconnectIdent(m.apart, m.ident)
	}
}

func (m *fullDisconnectSlotMsg[T]) Discard() {
	m.destLink.Release()
}

// fullDisconnectEdgeMsg 跨线程发起的边侧 disconnect。
type fullDisconnectEdgeMsg[T any] struct {
	destLink core.WeakLink
	dest     *Edge[T]
	apart    *Slot[T]
	ident    *core.Monitor
}

func (m *fullDisconnectEdgeMsg[T]) Consume() {
	defer m.destLink.Release()
	if m.destLink.Alive() {
		m.dest.DisconnectIdent(m.apart, m.ident)
	}
}

func (m *fullDisconnectEdgeMsg[T]) Discard() {
	m.destLink.Release()
}

// ─── 定时器 ─────────────────────────────────────────────────────────

// activateTimerMsg 在定时器归属 goroutine 上执行 Activate。
type activateTimerMsg struct {
	link  core.WeakLink
	timer *Timer
}

func (m *activateTimerMsg) Consume() {
	defer m.link.Release()
	if m.link.Alive() {
		m.timer.activateLocal()
	}
}

func (m *activateTimerMsg) Discard() {
	m.link.Release()
}

// deactivateTimerMsg 在定时器归属 goroutine 上执行 Deactivate。
type deactivateTimerMsg struct {
	link  core.WeakLink
	timer *Timer
}

func (m *deactivateTimerMsg) Consume() {
	defer m.link.Release()
	if m.link.Alive() {
		m.timer.deactivateLocal()
	}
}

func (m *deactivateTimerMsg) Discard() {
	m.link.Release()
}
