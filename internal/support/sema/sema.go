// Package sema 提供计数信号量 — Post/Wait/TimedWait/Get
//
// 基于 golang.org/x/sync/semaphore.Weighted 实现：构造时把全部配额
// 预先占走，使初始计数为 0；Post = Release(1)，Wait = Acquire(1)。
// TimedWait 用 deadline context 表达超时（POSIX sem_timedwait 的对等物）。
//
// Get 是尽力而为的观测值（与 sem_getvalue 一致）：只用于
// “无人等待才 Post”这类幂等唤醒判断，不提供精确语义。
package sema

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Sema 计数信号量。必须 New。
type Sema struct {
	w     *semaphore.Weighted
	value atomic.Int64 // Get 的观测镜像
}

// New 创建初始计数为 0 的信号量。
func New() *Sema {
	s := &Sema{w: semaphore.NewWeighted(math.MaxInt64)}
	// 占走全部配额：此后每个 Post 归还 1，每个 Wait 重新取走 1
	if err := s.w.Acquire(context.Background(), math.MaxInt64); err != nil {
		panic("sema: init acquire: " + err.Error())
	}
	return s
}

// Post 计数 +1，唤醒一个等待者（若有）。
func (s *Sema) Post() {
	s.value.Add(1)
	s.w.Release(1)
}

// Wait 阻塞直到计数 > 0，然后取走 1。
func (s *Sema) Wait() {
	// background context 下 Acquire 不会失败
	_ = s.w.Acquire(context.Background(), 1)
	s.value.Add(-1)
}

// TimedWait 带超时等待。超时返回 true；拿到信号返回 false。
// d <= 0 等价于 TryWait。
func (s *Sema) TimedWait(d time.Duration) bool {
	if d <= 0 {
		if s.w.TryAcquire(1) {
			s.value.Add(-1)
			return false
		}
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := s.w.Acquire(ctx, 1); err != nil {
		return true
	}
	s.value.Add(-1)
	return false
}

// Get 返回当前计数的观测值（尽力而为）。
func (s *Sema) Get() int64 {
	return s.value.Load()
}
