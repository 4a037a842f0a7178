// Package spinrw 提供单字自旋读写锁。
//
// 编码：bit 0 = 写者标志，bit 1.. = 读者计数 × 2。
// 仅适用于极短临界区（单个指针读写）——monitor 的 mailbox 字段正是如此；
// 临界区内禁止任何可能阻塞的操作。
//
// 自旋策略沿用两级退避：PAUSE 自旋 → 协作让出（不真正 park，
// 临界区短到不值得进调度器睡眠）。
package spinrw

import (
	"runtime"
	"sync/atomic"
	_ "unsafe"
)

//go:linkname runtime_procyield runtime.procyield
func runtime_procyield(cycles uint32)

// Lock 自旋读写锁。零值即就绪。
type Lock struct {
	word atomic.Uint32
}

// spin 等待期间的退避：先 PAUSE 指令自旋，长时间拿不到再让出 P。
func spin(i int) {
	if i < 64 {
		runtime_procyield(10)
	} else {
		runtime.Gosched()
	}
}

// RLock 读者加锁：+2 后检查写者位，撞上写者则回滚重试。
func (l *Lock) RLock() {
	for i := 0; ; i++ {
		if l.word.Add(2)&1 == 0 {
			return
		}
		// 有写者：撤销本次读者计数，等写者离开
		if l.word.Add(^uint32(1))&1 == 0 {
			continue
		}
		for l.word.Load()&1 != 0 {
			spin(i)
		}
	}
}

// RUnlock 读者解锁。
func (l *Lock) RUnlock() {
	l.word.Add(^uint32(1))
}

// WLock 写者加锁：抢占 bit 0，再等全部读者排空。
// 写者之间互斥：写者位已被占时自旋等它清零后重抢。
func (l *Lock) WLock() {
	for i := 0; ; i++ {
		prev := l.word.Or(1)
		if prev == 0 {
			return
		}
		if prev&1 == 0 {
			break // 抢到写者位，还需等读者
		}
		for l.word.Load()&1 != 0 {
			spin(i)
		}
	}
	for i := 0; l.word.Load() != 1; i++ {
		spin(i)
	}
}

// WUnlock 写者解锁。
func (l *Lock) WUnlock() {
	l.word.Add(^uint32(0))
}
