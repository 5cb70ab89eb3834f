package criteria

// IScrollPosition 滚动位置标记。两种实现：偏移位置与键集位置。
type IScrollPosition interface {
	// IsInitial 是否为初始位置（从头开始）
	IsInitial() bool
}

// OffsetPosition 基于行偏移的滚动位置。Offset 记录已消费的行数，
// 续扫时跳过这些行；零值即初始位置。
type OffsetPosition struct {
	Offset int64
}

// InitialOffset 初始偏移位置。
func InitialOffset() OffsetPosition { return OffsetPosition{} }

func (p OffsetPosition) IsInitial() bool { return p.Offset == 0 }

// KeysetPosition 基于排序键值的滚动位置。Keys 记录上一页末行
// 在每个排序属性上的值，续扫谓词据此构造。
type KeysetPosition struct {
	Keys map[string]any
}

// InitialKeyset 初始键集位置。
func InitialKeyset() KeysetPosition { return KeysetPosition{} }

// KeysetAt 指定键值的续扫位置。
func KeysetAt(keys map[string]any) KeysetPosition {
	return KeysetPosition{Keys: keys}
}

func (p KeysetPosition) IsInitial() bool { return len(p.Keys) == 0 }

// Window 一次滚动取回的窗口。
type Window[T any] struct {
	// Content 窗口内容
	Content []T

	// HasMore 是否还有后续行
	HasMore bool

	// Next 继续滚动的位置；HasMore 为 false 时无意义
	Next IScrollPosition
}
