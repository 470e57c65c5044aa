package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigpool/rigpool/pkg/adapter"
	"github.com/rigpool/rigpool/pkg/meta/mock"
)

type record struct {
	RID   string
	Value int
}

func (r *record) ID() string {
	return r.RID
}

func TestDatasetBasics(t *testing.T) {
	t.Parallel()

	mockKV := mock.NewMetaMock()
	dataset := NewDataSet[record, *record](mockKV, adapter.ResourceKeyAdapter)
	err := dataset.Upsert(context.TODO(), &record{
		RID:   "123",
		Value: 123,
	})
	require.NoError(t, err)

	err = dataset.Upsert(context.TODO(), &record{
		RID:   "123",
		Value: 456,
	})
	require.NoError(t, err)

	rec, err := dataset.Get(context.TODO(), "123")
	require.NoError(t, err)
	require.Equal(t, &record{
		RID:   "123",
		Value: 456,
	}, rec)

	err = dataset.Delete(context.TODO(), "123")
	require.NoError(t, err)

	_, err = dataset.Get(context.TODO(), "123")
	require.Error(t, err)
	require.Regexp(t, ".*ErrMetaEntryNotFound.*", err.Error())
}

func TestDatasetLoadAll(t *testing.T) {
	t.Parallel()

	mockKV := mock.NewMetaMock()
	dataset := NewDataSet[record, *record](mockKV, adapter.ResourceKeyAdapter)

	for i, id := range []string{"charlie", "alpha", "bravo"} {
		err := dataset.Upsert(context.TODO(), &record{RID: id, Value: i})
		require.NoError(t, err)
	}

	records, err := dataset.LoadAll(context.TODO())
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "alpha", records[0].RID)
	require.Equal(t, "bravo", records[1].RID)
	require.Equal(t, "charlie", records[2].RID)
}

func TestDatasetUpsertOpTxn(t *testing.T) {
	t.Parallel()

	mockKV := mock.NewMetaMock()
	dataset := NewDataSet[record, *record](mockKV, adapter.ResourceKeyAdapter)

	op1, err := dataset.UpsertOp(&record{RID: "a", Value: 1})
	require.NoError(t, err)
	op2, err := dataset.UpsertOp(&record{RID: "b", Value: 2})
	require.NoError(t, err)

	_, err = mockKV.Txn(context.TODO()).Do(op1, op2).Commit(context.TODO())
	require.NoError(t, err)

	rec, err := dataset.Get(context.TODO(), "b")
	require.NoError(t, err)
	require.Equal(t, 2, rec.Value)
}
