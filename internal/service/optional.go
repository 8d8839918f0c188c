package service

// Optional 区分“未提供”与“提供了零值”（如 00:00 或空字符串）
// 零值即未提供
type Optional[T any] struct {
	value T
	set   bool
}

// Some 构造已提供的值
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// FromPtr nil 视为未提供
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

// IsSet 是否已提供
func (o Optional[T]) IsSet() bool { return o.set }

// Get 返回值与是否已提供
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// OrElse 未提供时返回 fallback
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}
