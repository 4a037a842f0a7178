package strand

// WorkerOption 工作者配置项。
type WorkerOption func(*Worker)

// WithName 设置工作者名字（日志与调试用）。
func WithName(name string) WorkerOption {
	return func(w *Worker) { w.name = name }
}

// WithLockOSThread 把工作者 goroutine 绑定到 OS 线程。
// 端点工作集大、对 cache 亲和敏感的场景使用。
func WithLockOSThread() WorkerOption {
	return func(w *Worker) { w.lockOS = true }
}
