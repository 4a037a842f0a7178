package strand

import "github.com/uniyakcom/strand/core"

// Connect 建立 edge → slot 连接，可从任意 goroutine 发起。
// mode 缺省为 Auto。
//
// 每个半边落到各自所有者的 goroutine 上执行：
//   - 槽在当前邮箱：两个半边经 slot.connect 就地完成（边半按边的
//     亲和就地或入队）
//   - 边在当前邮箱：边半就地追加——紧随其后的 Emit 立即可见，且
//     槽半消息先于信号入队（同一生产者 FIFO），跨线程投递不丢首发；
//     槽半入队到槽所有者
//   - 两端都不在当前邮箱：整个操作打包 FullConnect 送槽所有者执行
//
// 跨线程 connect 因此是最终一致的：远端半边在对端消费消息时生效。
//
// edge 级联：把上游边接到下游边的槽位——
//
//	Connect(&up.Object, up.Edge, &down.Object, down.Edge.AsSlot())
func Connect[T any](edgeOwner *Object, edge *Edge[T], slotOwner *Object, slot *Slot[T], mode ...core.DeliveryMode) {
	m := core.Auto
	if len(mode) > 0 {
		m = mode[0]
	}
	slotLink := slotOwner.Link()
	edgeLink := edgeOwner.Link()
	if slotLink.SameMailbox() {
		slot.connect(slotLink, edgeLink, edge, m)
		return
	}
	if edgeLink.SameMailbox() {
		edge.halfConnectLocalEdge(slotLink.Clone(), slot, m)
		slot.halfConnect(slotLink, edgeLink, edge)
		return
	}
	slotLink.Send(&fullConnectMsg[T]{
		destLink:  slotLink,
		dest:      slot,
		apartLink: edgeLink,
		apart:     edge,
		mode:      m,
	})
}

// Disconnect 断开连接，可从任意 goroutine 调用。按 (对端指针,
// 所有者身份) 移除两侧各一条匹配记录；半边的路由规则与 Connect
// 一致。重复断开幂等（无匹配记录即 no-op）。
func Disconnect[T any](edgeOwner *Object, edge *Edge[T], slotOwner *Object, slot *Slot[T]) {
	slotLink := slotOwner.Link()
	if slotLink.SameMailbox() {
		slotLink.Release()
		slot.disconnectIdent(edge, edgeOwner.monitor())
		return
	}
	edgeLink := edgeOwner.Link()
	if edgeLink.SameMailbox() {
		edgeLink.Release()
		slotLink.Release()
		// 边半就地移除，槽半由 DisconnectIdent 入队送达
		edge.DisconnectIdent(slot, slotOwner.monitor())
		return
	}
	edgeLink.Release()
	slotLink.Send(&fullDisconnectSlotMsg[T]{
		destLink: slotLink,
		dest:     slot,
		apart:    edge,
		ident:    edgeOwner.monitor(),
	})
}

// DisconnectFromEdge 边侧发起的断开，与 Disconnect 对称：
// 优先在边所有者的 goroutine 上执行。
func DisconnectFromEdge[T any](edgeOwner *Object, edge *Edge[T], slotOwner *Object, slot *Slot[T]) {
	edgeLink := edgeOwner.Link()
	if edgeLink.SameMailbox() {
		edgeLink.Release()
		edge.DisconnectIdent(slot, slotOwner.monitor())
		return
	}
	slotLink := slotOwner.Link()
	if slotLink.SameMailbox() {
		slotLink.Release()
		edgeLink.Release()
		slot.disconnectIdent(edge, edgeOwner.monitor())
		return
	}
	slotLink.Release()
	edgeLink.Send(&fullDisconnectEdgeMsg[T]{
		destLink: edgeLink,
		dest:     edge,
		apart:    slot,
		ident:    slotOwner.monitor(),
	})
}
