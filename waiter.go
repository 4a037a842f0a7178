package strand

// signalCatcher WaitForSignal 的内部接签对象：一次性槽记下
// "接到了"并投自退出消息。
type signalCatcher[T any] struct {
	Object
	slot *Slot[T]
	got  bool
}

// WaitForSignal 在当前 goroutine 上自旋消息循环，直到 edge 发射一次
// 信号或 edge 被销毁。
//
// 流程：临时接签对象连上 edge → 调用 start（返回假则立即放弃）→
// 以"接签槽仍连着"为谓词跑消息循环。信号到达：记下、自退出、循环
// 展开；edge 先亡：对端半断开到达后谓词变假、循环返回。
// 返回是否真的接到了信号。
func WaitForSignal[T any](owner *Object, edge *Edge[T], start func() bool) bool {
	c := &signalCatcher[T]{}
	c.slot = NewSlot(&c.Object, func(T) {
		c.got = true
		PostSelfQuitMessage()
	})
	Connect(owner, edge, &c.Object, c.slot)
	if start != nil && !start() {
		c.Destroy()
		return false
	}
	MessageLoop(c.slot.IsConnected)
	got := c.got
	c.Destroy()
	return got
}

// WaitForDisconnected 跑消息循环直到槽的连接列表清空。
func WaitForDisconnected[T any](slot *Slot[T]) {
	MessageLoop(slot.IsConnected)
}
