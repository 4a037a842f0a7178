package core

import (
	"sync"

	"github.com/petermattis/goid"
)

// locals goroutine → 邮箱 绑定表。
// Go 没有 thread_local；用 goid 做键的注册表承担"当前线程的邮箱"。
// worker goroutine 进入循环前显式绑定自己的邮箱；其他 goroutine
// （main、测试）首次触及运行时时惰性绑定一个新邮箱。
var locals sync.Map // int64 → *Mailbox

// LocalMailbox 返回当前 goroutine 绑定的邮箱，未绑定则惰性创建。
func LocalMailbox() *Mailbox {
	id := goid.Get()
	if v, ok := locals.Load(id); ok {
		return v.(*Mailbox)
	}
	mb := NewMailbox()
	locals.Store(id, mb)
	return mb
}

// BindLocalMailbox 把 mb 绑定为当前 goroutine 的邮箱（worker 入口调用）。
func BindLocalMailbox(mb *Mailbox) {
	locals.Store(goid.Get(), mb)
}

// UnbindLocalMailbox 解除当前 goroutine 的绑定（worker 退出时调用，
// 回收注册表项）。
func UnbindLocalMailbox() {
	locals.Delete(goid.Get())
}
