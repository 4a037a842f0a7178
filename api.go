// Package strand 线程亲和的信号/槽运行时
//
// 对象驻留在专属 worker goroutine 上，彼此只通过静态类型连接上的
// 消息传递通信；连接/断开/发射协议在任意对象生命期与任意并发
// 重连竞争下保持各端数据结构的不变式一致。
//
// 核心构件：
//   - Edge[T] / Slot[T]: 发射端 / 接收端，按连接选择投递模式
//   - Object / Anchor / Monitor / WeakLink: 对象存活与邮箱亲和
//   - Worker / Mailbox: 专属 goroutine + MPSC 队列消息循环
//   - Timer: 挂接线程定时器列表的周期/单次发射器
//
// 用法:
//
//	type Counter struct {
//	    strand.Object
//	    Slot *strand.Slot[int]
//	    sum  int
//	}
//	c := &Counter{}
//	c.Slot = strand.NewSlot(&c.Object, func(v int) { c.sum += v })
//
//	src := &Source{}
//	src.Edge = strand.NewEdge[int](&src.Object)
//
//	w := strand.NewWorker()
//	w.GrabObject(&c.Object)               // c 迁到 w 的邮箱
//	strand.Connect(&src.Object, src.Edge, &c.Object, c.Slot)
//	src.Edge.Emit(42)                     // 排队投递到 w
//	w.PostQuitMessage()
//	w.Join()
package strand

import "github.com/uniyakcom/strand/core"

// ═══════════════════════════════════════════════════════════════════
// core 再导出：对外 API 单包收口
// ═══════════════════════════════════════════════════════════════════

// Message 导出协议消息接口
type Message = core.Message

// Mailbox 导出邮箱类型
type Mailbox = core.Mailbox

// Monitor 导出对象监视器
type Monitor = core.Monitor

// Anchor 导出所有权锚
type Anchor = core.Anchor

// WeakLink 导出弱链接
type WeakLink = core.WeakLink

// DeliveryMode 导出投递模式
type DeliveryMode = core.DeliveryMode

// 投递模式常量
const (
	Auto       = core.Auto
	Direct     = core.Direct
	Queue      = core.Queue
	BlockQueue = core.BlockQueue
)

// LocalMailbox 当前 goroutine 绑定的邮箱（未绑定则惰性创建）。
func LocalMailbox() *Mailbox {
	return core.LocalMailbox()
}
