package etcdkv

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/clientv3"
	"go.etcd.io/etcd/etcdserver/etcdserverpb"

	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/meta/metaclient"
)

const defaultDialTimeout = 5 * time.Second

// epochKey is a reserved key whose put revision serves as a cluster
// wide monotonic epoch.
const epochKey = "/rigpool/meta/epoch"

// Client implements metaclient.Client on top of etcd.
type Client struct {
	cli *clientv3.Client
}

// NewClient creates an etcd backed metastore client.
func NewClient(storeConf metaclient.StoreConfig) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   storeConf.Endpoints,
		DialTimeout: defaultDialTimeout,
		Username:    storeConf.User,
		Password:    storeConf.Password,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrMetaNewClientFail, err)
	}
	return &Client{cli: cli}, nil
}

// NewClientFromEtcd wraps an existing etcd client, typically the one
// connected to the embedded etcd of the server process.
func NewClientFromEtcd(cli *clientv3.Client) *Client {
	return &Client{cli: cli}
}

// Put implements metaclient.KV.Put.
func (c *Client) Put(ctx context.Context, key, val string) (*metaclient.PutResponse, error) {
	resp, err := c.cli.Put(ctx, key, val)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMetaOpFail, err)
	}
	return makePutResp(resp), nil
}

// Get implements metaclient.KV.Get.
func (c *Client) Get(ctx context.Context, key string, opts ...metaclient.OpOption) (*metaclient.GetResponse, error) {
	op := metaclient.OpGet(key, opts...)
	resp, err := c.cli.Get(ctx, key, etcdGetOptions(op)...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMetaOpFail, err)
	}
	return makeGetResp(resp), nil
}

// Delete implements metaclient.KV.Delete.
func (c *Client) Delete(ctx context.Context, key string, opts ...metaclient.OpOption) (*metaclient.DeleteResponse, error) {
	op := metaclient.OpDelete(key, opts...)
	resp, err := c.cli.Delete(ctx, key, etcdRangeOptions(op)...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMetaOpFail, err)
	}
	return makeDeleteResp(resp), nil
}

// Txn implements metaclient.KV.Txn.
func (c *Client) Txn(ctx context.Context) metaclient.Txn {
	return &etcdTxn{cli: c.cli}
}

// GenEpoch implements metaclient.Client.GenEpoch. The revision of a put
// on a reserved key is strictly increasing, so it serves as the epoch.
func (c *Client) GenEpoch(ctx context.Context) (int64, error) {
	resp, err := c.cli.Put(ctx, epochKey, "")
	if err != nil {
		return 0, errors.Wrap(errors.ErrMetaOpFail, err)
	}
	return resp.Header.Revision, nil
}

// Close implements metaclient.Client.Close.
func (c *Client) Close() error {
	return c.cli.Close()
}

type etcdTxn struct {
	cli *clientv3.Client
	ops []metaclient.Op
}

func (t *etcdTxn) Do(ops ...metaclient.Op) metaclient.Txn {
	t.ops = append(t.ops, ops...)
	return t
}

func (t *etcdTxn) Commit(ctx context.Context) (*metaclient.TxnResponse, error) {
	etcdOps := make([]clientv3.Op, 0, len(t.ops))
	for _, op := range t.ops {
		etcdOps = append(etcdOps, toEtcdOp(op))
	}
	resp, err := t.cli.Txn(ctx).Then(etcdOps...).Commit()
	if err != nil {
		return nil, errors.Wrap(errors.ErrMetaOpFail, err)
	}
	return makeTxnResp(resp), nil
}

func toEtcdOp(op metaclient.Op) clientv3.Op {
	switch {
	case op.IsGet():
		return clientv3.OpGet(string(op.KeyBytes()), etcdGetOptions(op)...)
	case op.IsPut():
		return clientv3.OpPut(string(op.KeyBytes()), string(op.ValueBytes()))
	case op.IsDelete():
		return clientv3.OpDelete(string(op.KeyBytes()), etcdRangeOptions(op)...)
	}
	// The op constructors make any other type unreachable.
	panic("unknown op type")
}

func etcdRangeOptions(op metaclient.Op) []clientv3.OpOption {
	if len(op.RangeBytes()) > 0 {
		return []clientv3.OpOption{clientv3.WithRange(string(op.RangeBytes()))}
	}
	return nil
}

func etcdGetOptions(op metaclient.Op) []clientv3.OpOption {
	opts := etcdRangeOptions(op)
	if op.IsWithPrefix() {
		opts = append(opts, clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	}
	return opts
}

func makePutResp(etcdResp *clientv3.PutResponse) *metaclient.PutResponse {
	return &metaclient.PutResponse{
		Header: &metaclient.ResponseHeader{
			Revision: etcdResp.Header.Revision,
		},
	}
}

func makeGetResp(etcdResp *clientv3.GetResponse) *metaclient.GetResponse {
	kvs := make([]*metaclient.KeyValue, 0, len(etcdResp.Kvs))
	for _, kv := range etcdResp.Kvs {
		kvs = append(kvs, &metaclient.KeyValue{
			Key:         kv.Key,
			Value:       kv.Value,
			ModRevision: kv.ModRevision,
		})
	}
	return &metaclient.GetResponse{
		Header: &metaclient.ResponseHeader{
			Revision: etcdResp.Header.Revision,
		},
		Kvs: kvs,
	}
}

func makeDeleteResp(etcdResp *clientv3.DeleteResponse) *metaclient.DeleteResponse {
	return &metaclient.DeleteResponse{
		Header: &metaclient.ResponseHeader{
			Revision: etcdResp.Header.Revision,
		},
		Deleted: etcdResp.Deleted,
	}
}

func makeTxnResp(etcdResp *clientv3.TxnResponse) *metaclient.TxnResponse {
	rsps := make([]metaclient.ResponseOp, 0, len(etcdResp.Responses))
	for _, eRsp := range etcdResp.Responses {
		switch r := eRsp.Response.(type) {
		case *etcdserverpb.ResponseOp_ResponseRange:
			rsps = append(rsps, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpGet{
					ResponseGet: makeGetResp((*clientv3.GetResponse)(r.ResponseRange)),
				},
			})
		case *etcdserverpb.ResponseOp_ResponsePut:
			rsps = append(rsps, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpPut{
					ResponsePut: makePutResp((*clientv3.PutResponse)(r.ResponsePut)),
				},
			})
		case *etcdserverpb.ResponseOp_ResponseDeleteRange:
			rsps = append(rsps, metaclient.ResponseOp{
				Response: &metaclient.ResponseOpDelete{
					ResponseDelete: makeDeleteResp((*clientv3.DeleteResponse)(r.ResponseDeleteRange)),
				},
			})
		}
	}
	return &metaclient.TxnResponse{
		Header: &metaclient.ResponseHeader{
			Revision: etcdResp.Header.Revision,
		},
		Responses: rsps,
	}
}
