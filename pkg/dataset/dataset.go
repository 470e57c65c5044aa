package dataset

import (
	"context"
	"encoding/json"

	perrors "github.com/pingcap/errors"

	"github.com/rigpool/rigpool/pkg/adapter"
	derror "github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/meta/metaclient"
)

// DataSet stores one JSON-encoded entry per ID under a key prefix.
//
//nolint:structcheck
type DataSet[E any, T DataEntry[E]] struct {
	metaclient metaclient.KV
	keyPrefix  adapter.KeyAdapter
}

type DataEntry[E any] interface {
	ID() string
	*E
}

func NewDataSet[E any, T DataEntry[E]](metaclient metaclient.KV, keyPrefix adapter.KeyAdapter) *DataSet[E, T] {
	return &DataSet[E, T]{
		metaclient: metaclient,
		keyPrefix:  keyPrefix,
	}
}

func (d *DataSet[E, T]) Get(ctx context.Context, id string) (T, error) {
	getResp, kvErr := d.metaclient.Get(ctx, d.getKey(id))
	if kvErr != nil {
		return nil, perrors.Trace(kvErr)
	}

	if len(getResp.Kvs) == 0 {
		return nil, derror.ErrMetaEntryNotFound.GenWithStackByArgs(d.getKey(id))
	}
	rawBytes := getResp.Kvs[0].Value

	var retVal E
	if err := json.Unmarshal(rawBytes, &retVal); err != nil {
		return nil, perrors.Trace(err)
	}
	return &retVal, nil
}

// LoadAll returns every entry under the prefix, in key order.
func (d *DataSet[E, T]) LoadAll(ctx context.Context) ([]T, error) {
	getResp, kvErr := d.metaclient.Get(ctx, d.keyPrefix.Path(), metaclient.WithPrefix())
	if kvErr != nil {
		return nil, perrors.Trace(kvErr)
	}

	ret := make([]T, 0, len(getResp.Kvs))
	for _, kv := range getResp.Kvs {
		var entry E
		if err := json.Unmarshal(kv.Value, &entry); err != nil {
			return nil, perrors.Trace(err)
		}
		ret = append(ret, &entry)
	}
	return ret, nil
}

func (d *DataSet[E, T]) Upsert(ctx context.Context, entry T) error {
	rawBytes, err := json.Marshal(entry)
	if err != nil {
		return perrors.Trace(err)
	}

	if _, err := d.metaclient.Put(ctx, d.getKey(entry.ID()), string(rawBytes)); err != nil {
		return err
	}
	return nil
}

// UpsertOp returns the put op for entry without applying it, so several
// entries can be committed in one transaction.
func (d *DataSet[E, T]) UpsertOp(entry T) (metaclient.Op, error) {
	rawBytes, err := json.Marshal(entry)
	if err != nil {
		return metaclient.Op{}, perrors.Trace(err)
	}
	return metaclient.OpPut(d.getKey(entry.ID()), string(rawBytes)), nil
}

func (d *DataSet[E, T]) Delete(ctx context.Context, id string) error {
	if _, err := d.metaclient.Delete(ctx, d.getKey(id)); err != nil {
		return err
	}
	return nil
}

func (d *DataSet[E, T]) getKey(id string) string {
	return d.keyPrefix.Encode(id)
}
