package strand

import "github.com/uniyakcom/strand/core"

// None 无参信号的负载类型（Timer.Timeout 等）。
type None = struct{}

// slotConn 接收侧连接记录：对端 edge 所有者的弱链接 + edge 指针。
// 记录持有链接的所有权副本，移除时释放。
type slotConn[T any] struct {
	link core.WeakLink
	edge *Edge[T]
}

// Slot 接收侧端点。持有已连接 edge 的记录列表；列表归属槽所在
// goroutine 独占，所有变更操作必须在该 goroutine 上执行
// （跨线程请求以消息形式到达后在本地执行）。
type Slot[T any] struct {
	owner *Object
	fn    func(T)
	conns []slotConn[T]
}

// NewSlot 创建槽并绑定接收回调。fn 通常是 owner 方法的闭包；
// 对象引用直接焊死在闭包里，不经监视器转发。
func NewSlot[T any](owner *Object, fn func(T)) *Slot[T] {
	owner.Anchor() // 惰性锚定到当前 goroutine
	s := &Slot[T]{owner: owner, fn: fn}
	owner.addCloser(s.Close)
	return s
}

// receive 投递信号到回调。仅在归属 goroutine 上被调用
// （同步直调路径或 signal 消息的消费路径）。
func (s *Slot[T]) receive(v T) {
	s.fn(v)
}

// IsConnected 连接列表是否非空。
func (s *Slot[T]) IsConnected() bool {
	return len(s.conns) > 0
}

// ownerMon 槽所有者的监视器（对端记录的匹配身份）。
func (s *Slot[T]) ownerMon() *core.Monitor {
	return s.owner.monitor()
}

// connect 连接协议入口。接管两个链接的所有权。
// 槽在本邮箱：槽半就地追加，边半按边的亲和就地完成或入队到边所有者；
// 否则整个操作打包为 FullConnect
// 送到槽所有者的邮箱执行。
func (s *Slot[T]) connect(slotLink, edgeLink core.WeakLink, edge *Edge[T], mode core.DeliveryMode) {
	if slotLink.SameMailbox() {
		s.halfConnect(slotLink, edgeLink.Clone(), edge)
		edge.halfConnect(edgeLink, s.owner.Link(), s, mode)
	} else {
		slotLink.Send(&fullConnectMsg[T]{
			destLink:  slotLink,
			dest:      s,
			apartLink: edgeLink,
			apart:     edge,
			mode:      mode,
		})
	}
}

// halfConnect 槽侧半连接（路由形式）。接管两个链接。
// 亲和性在此复查：connect 的检查与执行之间对象可能已被迁走。
func (s *Slot[T]) halfConnect(slotLink, edgeLink core.WeakLink, edge *Edge[T]) {
	if slotLink.SameMailbox() {
		s.halfConnectLocal(edgeLink, edge)
		slotLink.Release()
	} else {
		slotLink.Send(&halfConnectSlotMsg[T]{
			destLink:  slotLink,
			dest:      s,
			apartLink: edgeLink,
			apart:     edge,
		})
	}
}

// halfConnectLocal 追加记录。接管 link。
func (s *Slot[T]) halfConnectLocal(link core.WeakLink, edge *Edge[T]) {
	s.conns = append(s.conns, slotConn[T]{link: link, edge: edge})
}

// halfDisconnectLocal 移除唯一一条同时匹配 (edge 指针, 链接身份)
// 的记录。按身份对齐才能正确区分同一对象间的重复连接。
func (s *Slot[T]) halfDisconnectLocal(edge *Edge[T], ident *core.Monitor) {
	for i := range s.conns {
		c := &s.conns[i]
		if c.edge == edge && c.link.Monitor() == ident {
			c.link.Release()
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return
		}
	}
}

// halfDisconnectRouted 槽侧半断开。route 为槽所有者链接（接管）；
// ident 为对端 edge 所有者监视器（裸身份，不持引用）。
func (s *Slot[T]) halfDisconnectRouted(route core.WeakLink, edge *Edge[T], ident *core.Monitor) {
	if route.SameMailbox() {
		s.halfDisconnectLocal(edge, ident)
		route.Release()
	} else {
		route.Send(&halfDisconnectSlotMsg[T]{
			destLink: route,
			dest:     s,
			apart:    edge,
			ident:    ident,
		})
	}
}

// Disconnect 断开与指定 edge 的第一条匹配连接（匹配 edge 指针与
// edgeOwner 身份），并请求对端丢弃它那半边。本线程操作。
func (s *Slot[T]) Disconnect(edgeOwner *Object, edge *Edge[T]) {
	s.disconnectIdent(edge, edgeOwner.monitor())
}

// disconnectIdent 按 (edge 指针, 身份) 断开第一条匹配连接。
// 跨线程发起的槽侧断开（FullDisconnect）消费时也走这里。
func (s *Slot[T]) disconnectIdent(edge *Edge[T], ident *core.Monitor) {
	for i := range s.conns {
		c := &s.conns[i]
		if c.edge == edge && c.link.Monitor() == ident {
			edge.halfDisconnectRouted(c.link, s, s.ownerMon())
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return
		}
	}
}

// DisconnectAllFrom 断开与指定 edge 的全部连接（按指针匹配）。
func (s *Slot[T]) DisconnectAllFrom(edge *Edge[T]) {
	for i := 0; i < len(s.conns); {
		if s.conns[i].edge != edge {
			i++
			continue
		}
		c := s.conns[i]
		edge.halfDisconnectRouted(c.link, s, s.ownerMon())
		s.conns = append(s.conns[:i], s.conns[i+1:]...)
	}
}

// DisconnectAll 断开全部连接。
func (s *Slot[T]) DisconnectAll() {
	for i := range s.conns {
		c := &s.conns[i]
		c.edge.halfDisconnectRouted(c.link, s, s.ownerMon())
	}
	s.conns = nil
}

// Close 端点关闭：通知每个对端丢弃指向本槽的记录。
// 记录里的链接所有权直接转作路由。对象 Destroy 时自动调用。
func (s *Slot[T]) Close() {
	s.DisconnectAll()
}
