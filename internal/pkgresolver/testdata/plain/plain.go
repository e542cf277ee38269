package plain

type Value struct{}

func New() Value { return Value{} }

func (Value) Some() {}
