package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pkg/adapter"
	"github.com/rigpool/rigpool/pkg/dataset"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/meta/metaclient"
)

// StateUpdate carries the mutable part of a resource record to be
// written through to the metastore.
type StateUpdate struct {
	Name   model.ResourceID
	Dirty  bool
	Owners []model.SessionID
}

// RecoveredState is what Bootstrap hands back to the caller per
// resource, after reconciling the seed with the persisted records.
type RecoveredState struct {
	Dirty bool
	// WasHeld is true if the previous incarnation of the server had
	// granted the resource and never released it.
	WasHeld bool
}

// Registry is the durable catalog of resources. The set of resources
// and their immutable attributes come from the seed file; the dirty
// flag and the owner list are written through to the metastore so
// they survive restarts.
type Registry struct {
	mu      sync.RWMutex
	metas   map[model.ResourceID]*model.ResourceMeta
	ordered []model.ResourceID

	kv      metaclient.KV
	records *dataset.DataSet[model.ResourceRecord, *model.ResourceRecord]
}

// NewRegistry creates a Registry backed by the given metastore. Call
// Bootstrap before using any query method.
func NewRegistry(kv metaclient.KV) *Registry {
	return &Registry{
		metas:   make(map[model.ResourceID]*model.ResourceMeta),
		kv:      kv,
		records: dataset.NewDataSet[model.ResourceRecord, *model.ResourceRecord](kv, adapter.ResourceKeyAdapter),
	}
}

// Bootstrap loads the seed into the catalog, reconciles it with the
// records persisted by a previous incarnation and writes the merged
// records back in one transaction. Resources that were held when the
// previous incarnation went down come back dirty.
func (r *Registry) Bootstrap(ctx context.Context, seed []model.ResourceMeta) (map[model.ResourceID]RecoveredState, error) {
	if err := ValidateSeed(seed); err != nil {
		return nil, err
	}

	old, err := r.records.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	oldByName := make(map[model.ResourceID]*model.ResourceRecord, len(old))
	for _, rec := range old {
		oldByName[rec.Meta.Name] = rec
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.metas = make(map[model.ResourceID]*model.ResourceMeta, len(seed))
	r.ordered = r.ordered[:0]
	states := make(map[model.ResourceID]RecoveredState, len(seed))
	var ops []metaclient.Op
	for i := range seed {
		meta := seed[i].Clone()
		r.metas[meta.Name] = meta
		r.ordered = append(r.ordered, meta.Name)

		state := RecoveredState{}
		if rec, ok := oldByName[meta.Name]; ok {
			state.Dirty = rec.Dirty
			if len(rec.Owners) > 0 {
				state.Dirty = true
				state.WasHeld = true
				log.L().Warn("resource was held at shutdown, marking dirty",
					zap.String("resource", string(meta.Name)),
					zap.Any("owners", rec.Owners))
			}
			delete(oldByName, meta.Name)
		}
		states[meta.Name] = state

		op, err := r.records.UpsertOp(&model.ResourceRecord{
			Meta:  *meta,
			Dirty: state.Dirty,
		})
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i] < r.ordered[j] })

	// records with no seed entry belong to resources the operator
	// removed, drop them
	for name := range oldByName {
		log.L().Info("dropping record of removed resource",
			zap.String("resource", string(name)))
		ops = append(ops, metaclient.OpDelete(adapter.ResourceKeyAdapter.Encode(string(name))))
	}

	txn := r.kv.Txn(ctx)
	txn.Do(ops...)
	if _, err := txn.Commit(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrRegistryUnavailable, err)
	}
	log.L().Info("resource registry bootstrapped",
		zap.Int("resources", len(seed)),
		zap.Int("dropped", len(oldByName)))
	return states, nil
}

// PersistStates writes the given dirty flags and owner lists through
// to the metastore in one transaction.
func (r *Registry) PersistStates(ctx context.Context, updates ...StateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	r.mu.RLock()
	ops := make([]metaclient.Op, 0, len(updates))
	for _, up := range updates {
		meta, ok := r.metas[up.Name]
		if !ok {
			r.mu.RUnlock()
			return errors.ErrUnknownResource.GenWithStackByArgs(up.Name)
		}
		op, err := r.records.UpsertOp(&model.ResourceRecord{
			Meta:   *meta.Clone(),
			Dirty:  up.Dirty,
			Owners: up.Owners,
		})
		if err != nil {
			r.mu.RUnlock()
			return err
		}
		ops = append(ops, op)
	}
	r.mu.RUnlock()

	txn := r.kv.Txn(ctx)
	txn.Do(ops...)
	if _, err := txn.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrRegistryUnavailable, err)
	}
	return nil
}

// Get returns the meta of a resource by name.
func (r *Registry) Get(name model.ResourceID) (*model.ResourceMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.metas[name]
	if !ok {
		return nil, false
	}
	return meta.Clone(), true
}

// List returns the metas of all resources sorted by name.
func (r *Registry) List() []*model.ResourceMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]*model.ResourceMeta, 0, len(r.ordered))
	for _, name := range r.ordered {
		ret = append(ret, r.metas[name].Clone())
	}
	return ret
}

// ListByTag returns the metas of all resources carrying the tag,
// sorted by name.
func (r *Registry) ListByTag(tag model.Tag) []*model.ResourceMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ret []*model.ResourceMeta
	for _, name := range r.ordered {
		if r.metas[name].HasTag(tag) {
			ret = append(ret, r.metas[name].Clone())
		}
	}
	return ret
}

// Len returns the number of resources in the catalog.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metas)
}
