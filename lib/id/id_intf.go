package id

import "strconv"

// Gen generates the number id.
type Gen func() uint64

// Generator hands out non-zero ids, safe for concurrent use.
type Generator interface {
	Number() uint64
	Str() string
}

var (
	_ Generator = (*genDelegator)(nil)
)

type genDelegator struct {
	number Gen
}

func (id *genDelegator) Number() uint64 { return id.number() }
func (id *genDelegator) Str() string    { return strconv.FormatUint(id.number(), 10) }
