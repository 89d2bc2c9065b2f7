// Package workload generates deterministic cache operation sequences.
package workload

import "strconv"

// Kind distinguishes the two operation variants.
type Kind uint8

const (
	// Read looks a key up; a miss is filled from the simulated backend.
	Read Kind = iota
	// Write stores a value through the simulated backend.
	Write
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "GET"
	case Write:
		return "SET"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is a single cache operation. Value is only meaningful for writes.
type Op struct {
	Kind  Kind
	Key   uint64
	Value uint64
}

// ReadOp returns a Read of key.
func ReadOp(key uint64) Op {
	return Op{Kind: Read, Key: key}
}

// WriteOp returns a Write of key=value.
func WriteOp(key, value uint64) Op {
	return Op{Kind: Write, Key: key, Value: value}
}

func (o Op) String() string {
	if o.Kind == Write {
		return "SET," + strconv.FormatUint(o.Key, 10) + "," + strconv.FormatUint(o.Value, 10)
	}
	return o.Kind.String() + "," + strconv.FormatUint(o.Key, 10)
}

// CountReads returns the number of Read ops in ops.
func CountReads(ops []Op) int {
	n := 0
	for _, op := range ops {
		if op.Kind == Read {
			n++
		}
	}
	return n
}
