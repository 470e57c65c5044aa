package metaclient

type opType int

const (
	// A default Op has opType 0, which is invalid.
	tGet opType = iota + 1
	tPut
	tDelete
)

// Op represents an operation that a KV can execute.
type Op struct {
	t   opType
	key []byte
	end []byte
	val []byte

	withPrefix bool
}

// IsGet returns true if the operation is a Get.
func (op Op) IsGet() bool { return op.t == tGet }

// IsPut returns true if the operation is a Put.
func (op Op) IsPut() bool { return op.t == tPut }

// IsDelete returns true if the operation is a Delete.
func (op Op) IsDelete() bool { return op.t == tDelete }

// IsWithPrefix returns true if the WithPrefix option was applied.
func (op Op) IsWithPrefix() bool { return op.withPrefix }

// KeyBytes returns the byte slice holding the Op's key.
func (op Op) KeyBytes() []byte { return op.key }

// RangeBytes returns the byte slice holding the Op's range end, if any.
func (op Op) RangeBytes() []byte { return op.end }

// ValueBytes returns the byte slice holding the Op's value, if any.
func (op Op) ValueBytes() []byte { return op.val }

// OpGet returns a "get" operation for the given key and options.
func OpGet(key string, opts ...OpOption) Op {
	ret := Op{t: tGet, key: []byte(key)}
	ret.applyOpts(opts)
	return ret
}

// OpPut returns a "put" operation for the given key-value pair.
func OpPut(key, val string) Op {
	return Op{t: tPut, key: []byte(key), val: []byte(val)}
}

// OpDelete returns a "delete" operation for the given key and options.
func OpDelete(key string, opts ...OpOption) Op {
	ret := Op{t: tDelete, key: []byte(key)}
	ret.applyOpts(opts)
	return ret
}

func (op *Op) applyOpts(opts []OpOption) {
	for _, opt := range opts {
		opt(op)
	}
}

// OpOption configures get and delete operations.
type OpOption func(*Op)

// WithPrefix makes 'Get' and 'Delete' operate on all keys sharing the
// given prefix. For example, Get("foo", WithPrefix()) can return "foo1",
// "foo2", and so on.
func WithPrefix() OpOption {
	return func(op *Op) {
		op.withPrefix = true
		op.end = prefixRangeEnd(op.key)
	}
}

// prefixRangeEnd computes the range end so that [key, end) covers every
// key with the prefix.
func prefixRangeEnd(key []byte) []byte {
	end := make([]byte, len(key))
	copy(end, key)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i] = end[i] + 1
			end = end[:i+1]
			return end
		}
	}
	// next prefix does not exist (e.g. 0xffff), scan to the end
	return []byte{0}
}
