package core

import (
	"sync/atomic"

	"github.com/uniyakcom/strand/internal/support/spinrw"
)

// Monitor 对象监视器：一个对象的存活标志与邮箱亲和描述符。
// 堆上常驻、永不移动；连接记录与在途消息通过弱链接共享它。
//
// state 单字编码：bit 0 = ALIVE，bit 1.. = 引用计数 × 2。
// 该编码让 MarkDead 用一次 fetch-add 同时翻转存活位并取得一个
// 守护引用；DropRef 归零即是最后一个引用（内存归 GC，计数本身
// 是协议账目，也是测试可验证的对称性不变量）。
type Monitor struct {
	state atomic.Uintptr

	// mailbox 当前归属邮箱；自旋读写锁保护（临界区只有指针读写）。
	// 唯一的写者是所有权转移调用（MoveToMailbox / MarkDead 清空）。
	mailbox *Mailbox
	lock    spinrw.Lock
}

// NewMonitor 创建监视器：refcount = 0，ALIVE = 1（存活位即锚的引用）。
func NewMonitor(mb *Mailbox) *Monitor {
	m := &Monitor{mailbox: mb}
	m.state.Store(1)
	return m
}

// AddRef 增加一个引用。
func (m *Monitor) AddRef() {
	m.state.Add(2)
}

// DropRef 释放一个引用，返回是否为最后一个。
func (m *Monitor) DropRef() bool {
	return m.state.Add(^uintptr(1)) == 0
}

// MarkDead 宣告对象死亡：一次 add 同时清掉 ALIVE 位并取得守护引用，
// 随后在守护之下清空邮箱（打破 monitor→mailbox→消息→monitor 的环），
// 最后释放守护引用。
func (m *Monitor) MarkDead() {
	m.state.Add(1)
	m.SetMailbox(nil)
	m.DropRef()
}

// Alive 返回对象是否存活。
func (m *Monitor) Alive() bool {
	return m.state.Load()&1 != 0
}

// State 返回原始状态字（测试用）。
func (m *Monitor) State() uintptr {
	return m.state.Load()
}

// GetMailbox 读取当前邮箱（读保护下取出共享指针）。死后为 nil。
func (m *Monitor) GetMailbox() *Mailbox {
	m.lock.RLock()
	mb := m.mailbox
	m.lock.RUnlock()
	return mb
}

// SetMailbox 重设当前邮箱（所有权转移）。
func (m *Monitor) SetMailbox(mb *Mailbox) {
	m.lock.WLock()
	m.mailbox = mb
	m.lock.WUnlock()
}

// SameMailbox 判断对象是否归属当前 goroutine 的邮箱。
func (m *Monitor) SameMailbox() bool {
	local := LocalMailbox()
	m.lock.RLock()
	same := m.mailbox == local
	m.lock.RUnlock()
	return same
}

// ─── WeakLink ───────────────────────────────────────────────────────

// WeakLink 弱链接：持引用计数、不维持存活的监视器句柄。
// 等价性即监视器同一性。连接记录与在途消息持有的都是 Clone 出来的
// 所有权副本，移除记录/消费消息时 Release —— 配对纪律由调用侧保证。
type WeakLink struct {
	mon *Monitor
}

// LinkTo 从监视器建立弱链接（AddRef）。
func LinkTo(m *Monitor) WeakLink {
	if m != nil {
		m.AddRef()
	}
	return WeakLink{mon: m}
}

// Clone 复制弱链接（AddRef）。
func (l WeakLink) Clone() WeakLink {
	return LinkTo(l.mon)
}

// Release 释放弱链接持有的引用。释放后不得再用。
func (l WeakLink) Release() {
	if l.mon != nil {
		l.mon.DropRef()
	}
}

// Monitor 返回底层监视器（身份比较用）。
func (l WeakLink) Monitor() *Monitor { return l.mon }

// Empty 返回链接是否为空。
func (l WeakLink) Empty() bool { return l.mon == nil }

// Alive 返回被引用对象是否仍存活。
func (l WeakLink) Alive() bool {
	return l.mon != nil && l.mon.Alive()
}

// SameMailbox 判断被引用对象是否归属当前 goroutine 的邮箱。
func (l WeakLink) SameMailbox() bool {
	return l.mon != nil && l.mon.SameMailbox()
}

// Send 把消息投到被引用对象的当前邮箱；对象已无邮箱（已死或
// 从未绑定）时走 Discard 路径。
func (l WeakLink) Send(msg Message) {
	var mb *Mailbox
	if l.mon != nil {
		mb = l.mon.GetMailbox()
	}
	if mb == nil {
		msg.Discard()
		return
	}
	mb.Enqueue(msg)
}

// ─── Anchor ─────────────────────────────────────────────────────────

// Anchor 所有权锚：维持监视器 ALIVE 的句柄，嵌入在对象内。
// 不可复制：一个锚对应一个逻辑对象，"共享同一对象"用弱链接表达。
type Anchor struct {
	mon *Monitor
}

// Init 初始化锚：创建监视器并捕获当前 goroutine 的邮箱。
// 重复 Init 为 no-op。
func (a *Anchor) Init() {
	if a.mon == nil {
		a.mon = NewMonitor(LocalMailbox())
	}
}

// Initialized 返回锚是否已初始化。
func (a *Anchor) Initialized() bool { return a.mon != nil }

// Link 建立指向监视器的弱链接（AddRef，调用方负责 Release 或交给记录）。
func (a *Anchor) Link() WeakLink {
	a.Init()
	return LinkTo(a.mon)
}

// Monitor 返回锚的监视器（惰性初始化；身份比较用）。
func (a *Anchor) Monitor() *Monitor {
	a.Init()
	return a.mon
}

// Drop 废弃锚：翻转存活位并释放锚持有的引用。此后任何指向该对象的
// 在途信号都会在消费时被静默丢弃。
func (a *Anchor) Drop() {
	if a.mon != nil {
		a.mon.MarkDead()
	}
}

// MoveToMailbox 把对象重新亲和到指定邮箱。
// 端点连接列表非空时进行迁移是未定义行为（先断开再迁）。
func (a *Anchor) MoveToMailbox(mb *Mailbox) {
	a.Init()
	a.mon.SetMailbox(mb)
}

// MoveToLocalThread 把对象亲和到当前 goroutine 的邮箱。
func (a *Anchor) MoveToLocalThread() {
	a.MoveToMailbox(LocalMailbox())
}
