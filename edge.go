package strand

import "github.com/uniyakcom/strand/core"

// edgeConn 发射侧连接记录：对端 slot 所有者的弱链接 + slot 指针 +
// 本条连接的投递模式。slot == nil 为墓碑（emit 进行中的原位删除）。
type edgeConn[T any] struct {
	link core.WeakLink
	slot *Slot[T]
	mode core.DeliveryMode
}

// Edge 发射侧端点。本身就是一个槽（转发回调指向 Emit），
// 因此可以接入任何槽位实现 edge 级联代理。
//
// emit 与列表变更的重入约定：emitting 置位期间的断开操作不收缩
// 列表，只把命中的记录原位打成墓碑并标记 cleanupPending，
// 快照索引遍历因此恒有效；emit 收尾统一压实。
type Edge[T any] struct {
	Slot[T]
	conns          []edgeConn[T]
	emitting       bool
	cleanupPending bool
}

// NewEdge 创建边。作为槽的转发回调即本边的 Emit。
func NewEdge[T any](owner *Object) *Edge[T] {
	owner.Anchor()
	e := &Edge[T]{}
	e.Slot.owner = owner
	e.Slot.fn = e.Emit
	owner.addCloser(e.Close)
	return e
}

// AsSlot 以槽视角暴露本边（edge 级联时作为 Connect 的槽端）。
func (e *Edge[T]) AsSlot() *Slot[T] {
	return &e.Slot
}

// Emit 发射信号。必须在本边归属的 goroutine 上调用。
//
// 快照语义：只向 emit 开始时已存在的记录投递（emit 期间新建的
// 连接不参与本轮）；墓碑与已死对端跳过。投递模式：
//   - Auto: 同邮箱同步直调，否则排队
//   - Direct: 无条件同步直调
//   - Queue: 构造 signal 消息投到对端当前邮箱
//   - BlockQueue: 排队并等待消费完成；对端在本邮箱时退化为直调
func (e *Edge[T]) Emit(v T) {
	e.emitting = true
	size := len(e.conns)
	for i := 0; i < size; i++ {
		c := &e.conns[i]
		if c.slot == nil || !c.link.Alive() {
			continue
		}
		mode := c.mode
		if mode == core.Auto {
			if c.link.SameMailbox() {
				mode = core.Direct
			} else {
				mode = core.Queue
			}
		}
		switch mode {
		case core.Direct:
			c.slot.receive(v)
		case core.Queue:
			c.link.Send(&signalMsg[T]{link: c.link.Clone(), slot: c.slot, arg: v})
		case core.BlockQueue:
			if c.link.SameMailbox() {
				// 自死锁防护：本邮箱对端直接同步调用
				c.slot.receive(v)
				break
			}
			done := make(chan struct{})
			c.link.Send(&blockMsg{
				inner: &signalMsg[T]{link: c.link.Clone(), slot: c.slot, arg: v},
				done:  done,
			})
			<-done
		}
	}
	if e.cleanupPending {
		kept := e.conns[:0]
		for i := range e.conns {
			if e.conns[i].slot != nil {
				kept = append(kept, e.conns[i])
			}
		}
		e.conns = kept
		e.cleanupPending = false
	}
	e.emitting = false
}

// halfConnect 边侧半连接（路由形式）。接管两个链接。
func (e *Edge[T]) halfConnect(edgeLink, slotLink core.WeakLink, slot *Slot[T], mode core.DeliveryMode) {
	if edgeLink.SameMailbox() {
		e.halfConnectLocalEdge(slotLink, slot, mode)
		edgeLink.Release()
	} else {
		edgeLink.Send(&halfConnectEdgeMsg[T]{
			destLink:  edgeLink,
			dest:      e,
			apartLink: slotLink,
			apart:     slot,
			mode:      mode,
		})
	}
}

// halfConnectLocalEdge 追加记录。接管 link。
func (e *Edge[T]) halfConnectLocalEdge(link core.WeakLink, slot *Slot[T], mode core.DeliveryMode) {
	e.conns = append(e.conns, edgeConn[T]{link: link, slot: slot, mode: mode})
}

// remove 移除第 i 条记录：emit 进行中打墓碑，否则收缩列表。
// 调用前记录的链接必须已被转移或释放。
func (e *Edge[T]) remove(i int) {
	if e.emitting {
		e.conns[i].slot = nil
		e.conns[i].link = core.WeakLink{}
		e.conns[i].mode = core.Auto
		e.cleanupPending = true
	} else {
		e.conns = append(e.conns[:i], e.conns[i+1:]...)
	}
}

// halfDisconnectLocal 移除唯一一条同时匹配 (slot 指针, 链接身份)
// 的记录。
func (e *Edge[T]) halfDisconnectLocal(slot *Slot[T], ident *core.Monitor) {
	for i := range e.conns {
		c := &e.conns[i]
		if c.slot == slot && !c.link.Empty() && c.link.Monitor() == ident {
			c.link.Release()
			e.remove(i)
			return
		}
	}
}

// halfDisconnectRouted 边侧半断开。route 为边所有者链接（接管）；
// ident 为对端 slot 所有者监视器（裸身份）。
func (e *Edge[T]) halfDisconnectRouted(route core.WeakLink, slot *Slot[T], ident *core.Monitor) {
	if route.SameMailbox() {
		e.halfDisconnectLocal(slot, ident)
		route.Release()
	} else {
		route.Send(&halfDisconnectEdgeMsg[T]{
			destLink: route,
			dest:     e,
			apart:    slot,
			ident:    ident,
		})
	}
}

// Disconnect 断开与指定槽的第一条连接（按指针匹配），
// 并请求对端丢弃它那半边。本线程操作。
func (e *Edge[T]) Disconnect(slot *Slot[T]) {
	for i := range e.conns {
		c := &e.conns[i]
		if c.slot == slot && !c.link.Empty() {
			slot.halfDisconnectRouted(c.link, e, e.ownerMon())
			e.remove(i)
			return
		}
	}
}

// DisconnectIdent 断开与 (slot 指针, slotOwner 身份) 匹配的第一条
// 连接。跨线程发起的边侧断开走这里（见 DisconnectFromEdge）。
func (e *Edge[T]) DisconnectIdent(slot *Slot[T], ident *core.Monitor) {
	for i := range e.conns {
		c := &e.conns[i]
		if c.slot == slot && !c.link.Empty() && c.link.Monitor() == ident {
			slot.halfDisconnectRouted(c.link, e, e.ownerMon())
			e.remove(i)
			return
		}
	}
}

// DisconnectAllFrom 断开与指定槽的全部连接。
func (e *Edge[T]) DisconnectAllFrom(slot *Slot[T]) {
	for i := 0; i < len(e.conns); i++ {
		c := &e.conns[i]
		if c.slot != slot || c.link.Empty() {
			continue
		}
		slot.halfDisconnectRouted(c.link, e, e.ownerMon())
		e.remove(i)
		if !e.emitting {
			i-- // 原位收缩，重验当前下标
		}
	}
}

// DisconnectAllSlots 断开发射侧全部连接。
func (e *Edge[T]) DisconnectAllSlots() {
	for i := range e.conns {
		c := &e.conns[i]
		if c.slot == nil || c.link.Empty() {
			continue
		}
		c.slot.halfDisconnectRouted(c.link, e, e.ownerMon())
		if e.emitting {
			c.slot = nil
			c.link = core.WeakLink{}
		}
	}
	if e.emitting {
		e.cleanupPending = true
	} else {
		e.conns = nil
	}
}

// DisconnectAllEdges 断开接收侧全部连接（本边作为槽挂接的上游）。
func (e *Edge[T]) DisconnectAllEdges() {
	e.Slot.DisconnectAll()
}

// DisconnectAll 两侧全断。
func (e *Edge[T]) DisconnectAll() {
	e.DisconnectAllEdges()
	e.DisconnectAllSlots()
}

// Close 端点关闭：两侧对端全部通知。对象 Destroy 时自动调用。
func (e *Edge[T]) Close() {
	e.Slot.Close()
	for i := range e.conns {
		c := &e.conns[i]
		if c.slot == nil || c.link.Empty() {
			continue
		}
		c.slot.halfDisconnectRouted(c.link, e, e.ownerMon())
	}
	e.conns = nil
}
