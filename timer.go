package strand

import (
	"sync"
	"time"

	"github.com/petermattis/goid"
)

// Timer 定时发射器：挂接在归属 goroutine 定时器列表上的带锚对象。
// 到期发射公开的 Timeout 边（无参信号）。单调时钟。
type Timer struct {
	Object
	Timeout *Edge[None]

	period  time.Duration
	repeat  bool
	active  bool
	nextHit time.Time
}

// NewTimer 创建定时器。repeat 为假时只触发一次。
func NewTimer(period time.Duration, repeat bool) *Timer {
	t := &Timer{period: period, repeat: repeat}
	t.Timeout = NewEdge[None](&t.Object)
	return t
}

// Active 返回定时器是否激活（仅归属 goroutine 的观察有意义）。
func (t *Timer) Active() bool {
	return t.active
}

// Activate 激活定时器。跨线程调用时序列化为消息送到归属 goroutine。
func (t *Timer) Activate() {
	link := t.Link()
	if link.SameMailbox() {
		link.Release()
		t.activateLocal()
	} else {
		link.Send(&activateTimerMsg{link: link, timer: t})
	}
}

// Deactivate 休眠定时器，对称于 Activate。
func (t *Timer) Deactivate() {
	link := t.Link()
	if link.SameMailbox() {
		link.Release()
		t.deactivateLocal()
	} else {
		link.Send(&deactivateTimerMsg{link: link, timer: t})
	}
}

func (t *Timer) activateLocal() {
	t.active = true
	t.nextHit = time.Now().Add(t.period)
	localTimers().insert(t)
}

func (t *Timer) deactivateLocal() {
	t.active = false
	localTimers().drop(t)
}

// hit 到期触发：未激活则短路，否则发射 Timeout。
func (t *Timer) hit() {
	if !t.active {
		return
	}
	statTimerFires.Add(1)
	t.Timeout.Emit(None{})
}

// safeHit 与消息消费同等的 panic 防护：槽故障不拖垮循环。
func safeHit(t *Timer) {
	defer func() {
		if r := recover(); r != nil {
			statPanics.Add(1)
			if lg := loadLogger(); lg != nil {
				lg.Error("strand: timer slot panic swallowed", "panic", r)
			}
		}
	}()
	t.hit()
}

// ─── 归属 goroutine 的活动定时器列表 ────────────────────────────────

// timerLists goroutine → 定时器列表。列表只被自己的 goroutine 访问；
// sync.Map 仅解决注册表本身的并发建项。
var timerLists sync.Map // int64 → *timerList

// localTimers 当前 goroutine 的定时器列表，惰性创建。
func localTimers() *timerList {
	id := goid.Get()
	if v, ok := timerLists.Load(id); ok {
		return v.(*timerList)
	}
	tl := &timerList{}
	timerLists.Store(id, tl)
	return tl
}

// CleanupTimers 丢弃当前 goroutine 的定时器列表。
// worker 退出时自动调用；在复用 goroutine 的测试 teardown 中手动调用。
func CleanupTimers() {
	timerLists.Delete(goid.Get())
}

// timerList 按 nextHit 升序的插入有序列表，同刻保持插入序。
type timerList struct {
	items []*Timer
}

// insert 有序插入（稳定：同一 nextHit 排在已有项之后）。
func (tl *timerList) insert(t *Timer) {
	i := 0
	for i < len(tl.items) && !tl.items[i].nextHit.After(t.nextHit) {
		i++
	}
	tl.items = append(tl.items, nil)
	copy(tl.items[i+1:], tl.items[i:])
	tl.items[i] = t
}

// drop 移除指定定时器（不在列表则 no-op）。
func (tl *timerList) drop(t *Timer) {
	for i, it := range tl.items {
		if it == t {
			tl.items = append(tl.items[:i], tl.items[i+1:]...)
			return
		}
	}
}

// contains 是否在列表中。
func (tl *timerList) contains(t *Timer) bool {
	for _, it := range tl.items {
		if it == t {
			return true
		}
	}
	return false
}

// fireDue 触发头部所有到期项。每个到期定时器先摘除再 hit，
// repeat 且仍激活则推进 nextHit 重新插入；一次性定时器清激活位
// （回调内重新 Activate 过的除外——此时它已重新在列）。
func (tl *timerList) fireDue() {
	now := time.Now()
	for len(tl.items) > 0 && !tl.items[0].nextHit.After(now) {
		t := tl.items[0]
		tl.items = tl.items[1:]
		if !t.active {
			continue
		}
		safeHit(t)
		if t.repeat {
			if t.active {
				t.nextHit = t.nextHit.Add(t.period)
				tl.insert(t)
			}
		} else if !tl.contains(t) {
			t.active = false
		}
	}
}

// nextDelay 距最近一次触发的等待时长。列表空时 ok 为假。
func (tl *timerList) nextDelay() (time.Duration, bool) {
	if len(tl.items) == 0 {
		return 0, false
	}
	d := time.Until(tl.items[0].nextHit)
	if d < 0 {
		d = 0
	}
	return d, true
}
