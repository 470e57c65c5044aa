package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rigpool/rigpool/pkg/meta/metaclient"
)

// MetaMock is an in-memory implementation of metaclient.Client for
// tests. It is not a full metastore, only the semantics the resource
// registry relies on are simulated.
type MetaMock struct {
	sync.Mutex
	store    map[string]string
	revision int64
}

func NewMetaMock() *MetaMock {
	return &MetaMock{
		store: make(map[string]string),
	}
}

func (m *MetaMock) Put(ctx context.Context, key, value string) (*metaclient.PutResponse, error) {
	m.Lock()
	defer m.Unlock()

	return m.putNoLock(key, value)
}

func (m *MetaMock) putNoLock(key, value string) (*metaclient.PutResponse, error) {
	m.store[key] = value
	m.revision++
	return &metaclient.PutResponse{
		Header: &metaclient.ResponseHeader{Revision: m.revision},
	}, nil
}

func (m *MetaMock) Get(ctx context.Context, key string, opts ...metaclient.OpOption) (*metaclient.GetResponse, error) {
	m.Lock()
	defer m.Unlock()

	return m.getNoLock(metaclient.OpGet(key, opts...))
}

func (m *MetaMock) getNoLock(op metaclient.Op) (*metaclient.GetResponse, error) {
	ret := &metaclient.GetResponse{
		Header: &metaclient.ResponseHeader{Revision: m.revision},
	}
	key := string(op.KeyBytes())
	if !op.IsWithPrefix() {
		if value, ok := m.store[key]; ok {
			ret.Kvs = append(ret.Kvs, &metaclient.KeyValue{
				Key:   []byte(key),
				Value: []byte(value),
			})
		}
		return ret, nil
	}

	keys := make([]string, 0)
	for k := range m.store {
		if strings.HasPrefix(k, key) {
			keys = append(keys, k)
		}
	}
	// stable order like a real range scan
	sort.Strings(keys)
	for _, k := range keys {
		ret.Kvs = append(ret.Kvs, &metaclient.KeyValue{
			Key:   []byte(k),
			Value: []byte(m.store[k]),
		})
	}
	return ret, nil
}

func (m *MetaMock) Delete(ctx context.Context, key string, opts ...metaclient.OpOption) (*metaclient.DeleteResponse, error) {
	m.Lock()
	defer m.Unlock()

	return m.deleteNoLock(metaclient.OpDelete(key, opts...))
}

func (m *MetaMock) deleteNoLock(op metaclient.Op) (*metaclient.DeleteResponse, error) {
	key := string(op.KeyBytes())
	var deleted int64
	if op.IsWithPrefix() {
		for k := range m.store {
			if strings.HasPrefix(k, key) {
				delete(m.store, k)
				deleted++
			}
		}
	} else if _, ok := m.store[key]; ok {
		delete(m.store, key)
		deleted = 1
	}
	m.revision++
	return &metaclient.DeleteResponse{
		Header:  &metaclient.ResponseHeader{Revision: m.revision},
		Deleted: deleted,
	}, nil
}

func (m *MetaMock) Txn(ctx context.Context) metaclient.Txn {
	return &mockTxn{m: m}
}

func (m *MetaMock) GenEpoch(ctx context.Context) (int64, error) {
	m.Lock()
	defer m.Unlock()

	m.revision++
	return m.revision, nil
}

func (m *MetaMock) Close() error {
	return nil
}

type mockTxn struct {
	m   *MetaMock
	ops []metaclient.Op
}

func (t *mockTxn) Do(ops ...metaclient.Op) metaclient.Txn {
	t.ops = append(t.ops, ops...)
	return t
}

func (t *mockTxn) Commit(ctx context.Context) (*metaclient.TxnResponse, error) {
	// The whole commit holds the mock's lock to simulate the
	// SERIALIZABLE isolation of a real transaction.
	t.m.Lock()
	defer t.m.Unlock()

	txnRsp := &metaclient.TxnResponse{
		Responses: make([]metaclient.ResponseOp, 0, len(t.ops)),
	}
	for _, op := range t.ops {
		switch {
		case op.IsGet():
			rsp, err := t.m.getNoLock(op)
			if err != nil {
				return nil, err
			}
			txnRsp.Responses = append(txnRsp.Responses, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpGet{ResponseGet: rsp},
			})
		case op.IsPut():
			rsp, err := t.m.putNoLock(string(op.KeyBytes()), string(op.ValueBytes()))
			if err != nil {
				return nil, err
			}
			txnRsp.Responses = append(txnRsp.Responses, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpPut{ResponsePut: rsp},
			})
		case op.IsDelete():
			rsp, err := t.m.deleteNoLock(op)
			if err != nil {
				return nil, err
			}
			txnRsp.Responses = append(txnRsp.Responses, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpDelete{ResponseDelete: rsp},
			})
		}
	}
	txnRsp.Header = &metaclient.ResponseHeader{Revision: t.m.revision}
	return txnRsp, nil
}
