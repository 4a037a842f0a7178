// Package core 提供信号槽运行时的数据模型：消息、投递模式、
// 邮箱、对象监视器与弱链接。
//
// 线程亲和性约束贯穿整个包：端点（slot/edge/timer）的内部状态只能在
// 其归属邮箱的 goroutine 上修改；跨线程请求一律序列化为消息，
// 投递到目标邮箱后在本地执行。违反亲和性是未定义行为。
package core

// Message 协议消息。入队后归队列所有；消费线程调用 Consume 后即废弃。
//
// Discard 是"从未被消费"路径的收尾：邮箱关闭排空、投递目标已无邮箱
// 时调用。多数消息的 Discard 只释放弱链接；半连接消息在此发出补偿的
// 半断开（连接协议的回滚，见 protocol 实现），阻塞包装消息在此解除
// 发送方的等待。Consume 与 Discard 恰好调用其一。
type Message interface {
	Consume()
	Discard()
}

// DeliveryMode 每条连接的投递模式。
type DeliveryMode uint8

const (
	// Auto 自动：同邮箱同步直调，跨邮箱排队投递
	Auto DeliveryMode = iota
	// Direct 强制同步直调，无视线程亲和（调用方自证可重入安全）
	Direct
	// Queue 强制排队投递到对端当前邮箱
	Queue
	// BlockQueue 排队投递并阻塞等待消费完成；对端在本邮箱时
	// 退化为同步直调（防自死锁）
	BlockQueue
)

// QuitLoop 消息循环的退出哨兵。以 panic 形式沿消费栈展开，
// 仅被 MessageLoop 识别并吞掉；任何其他 panic 视为用户 slot 故障。
type QuitLoop struct{}

// QuitMessage 退出消息。消费即抛出退出哨兵，展开消息循环。
type QuitMessage struct{}

// Consume 抛出退出哨兵。
func (QuitMessage) Consume() { panic(QuitLoop{}) }

// Discard 退出消息无资源可释放。
func (QuitMessage) Discard() {}
