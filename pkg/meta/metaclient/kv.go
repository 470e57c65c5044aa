package metaclient

import "context"

// ResponseHeader is the common response header.
type ResponseHeader struct {
	// Revision is the key-value store revision when the request was applied.
	Revision int64
}

type PutResponse struct {
	Header *ResponseHeader
}

type GetResponse struct {
	Header *ResponseHeader
	// Kvs is the list of key-value pairs matched by the request.
	Kvs []*KeyValue
}

type DeleteResponse struct {
	Header *ResponseHeader
	// Deleted is the number of keys removed.
	Deleted int64
}

type TxnResponse struct {
	Header *ResponseHeader
	// Responses corresponds to the ops passed to Txn.Do, in order.
	Responses []ResponseOp
}

// ResponseOp is a union of the response types a transaction can carry.
type ResponseOp struct {
	Response isResponseOpResponse
}

type isResponseOpResponse interface {
	isResponseOpResponse()
}

type ResponseOpGet struct {
	ResponseGet *GetResponse
}

type ResponseOpPut struct {
	ResponsePut *PutResponse
}

type ResponseOpDelete struct {
	ResponseDelete *DeleteResponse
}

func (*ResponseOpGet) isResponseOpResponse()    {}
func (*ResponseOpPut) isResponseOpResponse()    {}
func (*ResponseOpDelete) isResponseOpResponse() {}

type KeyValue struct {
	// Key is the key in bytes. An empty key is not allowed.
	Key []byte
	// Value is the value held by the key, in bytes.
	Value []byte
	// ModRevision is the revision of the last modification on this key.
	ModRevision int64
}

// Txn batches ops so they are applied in one atomic commit.
type Txn interface {
	// Do caches ops in the transaction.
	Do(ops ...Op) Txn

	// Commit tries to commit the transaction. Any op error rolls
	// back the entire transaction.
	Commit(ctx context.Context) (*TxnResponse, error)
}

// KV is the key-value access interface of the metastore.
type KV interface {
	// Put puts a key-value pair into the metastore.
	Put(ctx context.Context, key, val string) (*PutResponse, error)

	// Get retrieves the value for key. When passed WithPrefix, Get
	// returns all keys sharing the prefix, sorted by key.
	Get(ctx context.Context, key string, opts ...OpOption) (*GetResponse, error)

	// Delete deletes a key, or all keys with the prefix when passed
	// WithPrefix.
	Delete(ctx context.Context, key string, opts ...OpOption) (*DeleteResponse, error)

	// Txn creates a transaction.
	Txn(ctx context.Context) Txn
}

// Client is a metastore client. Epochs generated by GenEpoch are
// strictly increasing across restarts of this process, which is what
// fences a session from a resurrected predecessor.
type Client interface {
	KV

	// GenEpoch generates a monotonically increasing epoch.
	GenEpoch(ctx context.Context) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
