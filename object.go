package strand

import "github.com/uniyakcom/strand/core"

// Object 带锚对象基座。嵌入后对象即获得监视器/锚语义：
//
//	type Counter struct {
//	    strand.Object
//	    Slot *strand.Slot[int]
//	}
//	c := &Counter{}
//	c.Slot = strand.NewSlot(&c.Object, c.onValue)
//
// 端点构造时自动完成锚的惰性初始化（捕获构造 goroutine 的邮箱）。
// Destroy 必须在对象归属的 goroutine 上调用：按注册逆序关闭全部端点
// （向每个对端发半断开），再废弃锚。此后指向该对象的在途信号
// 一律被静默丢弃。
type Object struct {
	anchor    core.Anchor
	closers   []func()
	destroyed bool
}

// Anchor 返回对象的锚（惰性初始化）。
func (o *Object) Anchor() *core.Anchor {
	o.anchor.Init()
	return &o.anchor
}

// Link 建立指向对象监视器的弱链接。
func (o *Object) Link() core.WeakLink {
	return o.Anchor().Link()
}

// monitor 对象监视器（身份比较用）。
func (o *Object) monitor() *core.Monitor {
	return o.Anchor().Monitor()
}

// addCloser 注册端点的关闭回调（端点构造函数调用）。
func (o *Object) addCloser(fn func()) {
	o.closers = append(o.closers, fn)
}

// Destroy 销毁对象：逆序关闭端点，然后废弃锚。幂等。
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
	o.anchor.Drop()
}
