package strand

import (
	"log/slog"
	"sync/atomic"

	"github.com/uniyakcom/strand/util"
)

// Stats 运行时统计快照。
type Stats struct {
	Consumed   int64 // 已消费消息总数
	Dropped    int64 // 排队信号在消费时因对端已死被静默丢弃的条数（emit 时跳过的死对端不计）
	Panics     int64 // 被吞掉的用户 slot panic 数
	TimerFires int64 // 定时器触发次数
}

var (
	statConsumed   = util.NewPerCPUCounter()
	statDropped    = util.NewPerCPUCounter()
	statPanics     = util.NewPerCPUCounter()
	statTimerFires = util.NewPerCPUCounter()
)

// RuntimeStats 返回全局运行时统计。
func RuntimeStats() Stats {
	return Stats{
		Consumed:   statConsumed.Read(),
		Dropped:    statDropped.Read(),
		Panics:     statPanics.Read(),
		TimerFires: statTimerFires.Read(),
	}
}

// logger 可选运行时日志（nil = 静默，热路径零开销）。
var logger atomic.Pointer[slog.Logger]

// SetLogger 安装运行时日志器。传 nil 恢复静默。
func SetLogger(lg *slog.Logger) {
	logger.Store(lg)
}

func loadLogger() *slog.Logger {
	return logger.Load()
}
