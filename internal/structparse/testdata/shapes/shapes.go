package shapes

type Empty struct{}

type Number int

type Alias = Empty

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Base struct {
	ID int64
}

type WithEmbedded struct {
	*Base
	Name string
}
