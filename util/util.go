// Package util 提供运行时通用的工具类型
package util

import (
	"runtime"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// maxSlots 最大 slot 数量（覆盖常见 GOMAXPROCS）
const maxSlots = 256

// PerCPUCounter 分片无竞争计数器
// 按 goroutine id 哈希分散写入到不同 cache line，避免热路径上的
// 跨核 atomic 争用；Read 聚合所有分片，仅用于统计快照。
type PerCPUCounter struct {
	counters [maxSlots]counterSlot
	mask     int64
}

type counterSlot struct {
	count atomic.Int64
	_     [56]byte // cache line padding (64 - 8)
}

// NewPerCPUCounter 创建分片计数器。
// 分片数向上取 2 的幂；低核环境保底 8 片，分散 goid 哈希冲突。
func NewPerCPUCounter() *PerCPUCounter {
	n := runtime.GOMAXPROCS(0)
	sz := 1
	for sz < n {
		sz *= 2
	}
	if sz < 8 {
		sz = 8
	}
	if sz > maxSlots {
		sz = maxSlots
	}
	return &PerCPUCounter{mask: int64(sz - 1)}
}

// Add 计数累加。goid 在 goroutine 生命周期内不变，
// 同一 goroutine 的写入恒落在同一分片。
func (c *PerCPUCounter) Add(delta int64) {
	c.counters[goid.Get()&c.mask].count.Add(delta)
}

// Read 聚合所有分片的累计值。
func (c *PerCPUCounter) Read() int64 {
	var sum int64
	for i := int64(0); i <= c.mask; i++ {
		sum += c.counters[i].count.Load()
	}
	return sum
}
