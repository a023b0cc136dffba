package snapshot

import "fmt"

// Kind identifies one member of the closed set of payload value kinds the
// engine knows how to snapshot. Every switch over Kind in this package must
// cover all of them; adding a kind means extending each one.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindRecord
	KindDict
	KindSet
	KindBuffer
	KindSharedBuffer
	KindNumericBuffer
	KindTime
	KindPattern
)

var kindNames = [...]string{
	KindNull:          "null",
	KindBool:          "bool",
	KindInt:           "int",
	KindFloat:         "float",
	KindString:        "string",
	KindList:          "list",
	KindRecord:        "record",
	KindDict:          "dict",
	KindSet:           "set",
	KindBuffer:        "buffer",
	KindSharedBuffer:  "shared_buffer",
	KindNumericBuffer: "numeric_buffer",
	KindTime:          "time",
	KindPattern:       "pattern",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}
