package entity

// Option holds a value that may be absent. None set means absent.
type Option[T any] struct {
	Value T
	None  bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{Value: value}
}

func NoneOf[T any]() Option[T] {
	return Option[T]{None: true}
}

// Result pairs a value with the error produced while computing it.
type Result[T any] struct {
	Value T
	Error error
}
