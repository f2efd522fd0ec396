package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelmerpassos/ipet-api/pkg/models"
)

type fakeCustomerFinder struct {
	known map[int64]bool
	err   error
}

func (f *fakeCustomerFinder) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, nil
	}
	return &models.Customer{ID: id}, nil
}

type fakeProductFinder struct {
	known map[int64]bool
}

func (f *fakeProductFinder) GetByID(_ context.Context, id int64) (*models.Product, error) {
	if !f.known[id] {
		return nil, nil
	}
	return &models.Product{ID: id}, nil
}

type pair struct {
	customerID int64
	productID  int64
}

type fakeAssociationStore struct {
	existing  map[pair]bool
	createErr map[pair]error
	created   []*models.Association
}

func (f *fakeAssociationStore) Create(_ context.Context, assoc *models.Association) (*models.Association, error) {
	key := pair{assoc.CustomerID, assoc.ProductID}
	if err := f.createErr[key]; err != nil {
		return nil, err
	}
	f.existing[key] = true
	f.created = append(f.created, assoc)
	return assoc, nil
}

func (f *fakeAssociationStore) GetByPair(_ context.Context, customerID, productID int64) (*models.Association, error) {
	if f.existing[pair{customerID, productID}] {
		return &models.Association{CustomerID: customerID, ProductID: productID}, nil
	}
	return nil, nil
}

type fakeEmitter struct {
	events []*models.Association
	err    error
}

func (f *fakeEmitter) EmitAssociationCreated(_ context.Context, assoc *models.Association, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, assoc)
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestReconciler(customers *fakeCustomerFinder, products *fakeProductFinder, store *fakeAssociationStore, emitter EventEmitter) *Reconciler {
	return NewReconciler(customers, products, store, emitter, noopLogger())
}

func TestReconcileCreatesAssociations(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true, 2: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true, 20: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}
	emitter := &fakeEmitter{}

	file := strings.NewReader(
		"00000001|00000010|20230615143000\n" +
			"00000002|00000020|20230615143001\n",
	)

	summary, err := newTestReconciler(customers, products, store, emitter).Reconcile(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Lines)
	assert.Equal(t, 2, summary.Created)
	assert.Zero(t, summary.Duplicates)
	assert.Zero(t, summary.Failed)
	assert.Len(t, store.created, 2)
	assert.Len(t, emitter.events, 2)
	assert.Equal(t, models.StatusActive, store.created[0].CurrentStatus)
}

func TestReconcileIsIdempotent(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}

	reconciler := newTestReconciler(customers, products, store, nil)
	line := "1|10|20230615143000\n"

	summary, err := reconciler.Reconcile(context.Background(), strings.NewReader(line))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	summary, err = reconciler.Reconcile(context.Background(), strings.NewReader(line))
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Len(t, store.created, 1)
}

func TestReconcileLogsExistingAssociation(t *testing.T) {
	var logs []ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		logs = append(logs, msg)
	})

	customers := &fakeCustomerFinder{known: map[int64]bool{1: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{{1, 10}: true}}

	reconciler := NewReconciler(customers, products, store, nil, logger)
	summary, err := reconciler.Reconcile(context.Background(), strings.NewReader("00000001|00000010|20230615143000\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates)
	assert.Zero(t, summary.Created)
	assert.Empty(t, store.created)

	var found bool
	for _, msg := range logs {
		if msg.Message == "Customer already associated with product" {
			found = true
			assert.Equal(t, "info", msg.Level)
			assert.EqualValues(t, int64(1), msg.Fields["customer_id"])
			assert.EqualValues(t, int64(10), msg.Fields["product_id"])
		}
	}
	assert.True(t, found, "expected an already associated log entry")
}

func TestReconcileExistingPairSkipsLookups(t *testing.T) {
	// A known pair counts as a duplicate even when reference lookups fail.
	customers := &fakeCustomerFinder{err: errors.New("db down")}
	products := &fakeProductFinder{known: map[int64]bool{}}
	store := &fakeAssociationStore{existing: map[pair]bool{{1, 10}: true}}

	summary, err := newTestReconciler(customers, products, store, nil).Reconcile(
		context.Background(), strings.NewReader("1|10|20230615143000\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates)
	assert.Zero(t, summary.Failed)
}

func TestReconcileUnresolvedReferences(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}

	file := strings.NewReader(
		"99|10|20230615143000\n" + // unknown customer
			"1|99|20230615143000\n" + // unknown product
			"1|10|20230615143000\n",
	)

	summary, err := newTestReconciler(customers, products, store, nil).Reconcile(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Unresolved)
	assert.Equal(t, 1, summary.Created)
	assert.Len(t, store.created, 1)
}

func TestReconcileLogsUnresolvedAtErrorLevel(t *testing.T) {
	var logs []ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		logs = append(logs, msg)
	})

	customers := &fakeCustomerFinder{known: map[int64]bool{}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}

	reconciler := NewReconciler(customers, products, store, nil, logger)
	summary, err := reconciler.Reconcile(context.Background(), strings.NewReader("99|10|20230615143000\n"))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Unresolved)

	var found bool
	for _, msg := range logs {
		if msg.Message == "Record references unknown customer or product" {
			found = true
			assert.Equal(t, "error", msg.Level)
			assert.EqualValues(t, int64(99), msg.Fields["customer_id"])
		}
	}
	assert.True(t, found, "expected an unresolved reference log entry")
}

func TestReconcileSkipsBadLines(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}

	file := strings.NewReader(
		"garbage line\n" +
			"1|10|bad-timestamp\n" +
			"\n" +
			"1|10|20230615143000\n",
	)

	summary, err := newTestReconciler(customers, products, store, nil).Reconcile(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Lines) // blank line is not counted
	assert.Equal(t, 2, summary.ParseErrors)
	assert.Equal(t, 1, summary.Created)
}

func TestReconcileContinuesAfterStoreFailure(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true, 2: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{
		existing:  map[pair]bool{},
		createErr: map[pair]error{{1, 10}: errors.New("db down")},
	}

	file := strings.NewReader(
		"1|10|20230615143000\n" +
			"2|10|20230615143000\n",
	)

	summary, err := newTestReconciler(customers, products, store, nil).Reconcile(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Created)
}

func TestReconcileEmitterFailureDoesNotFailRecord(t *testing.T) {
	customers := &fakeCustomerFinder{known: map[int64]bool{1: true}}
	products := &fakeProductFinder{known: map[int64]bool{10: true}}
	store := &fakeAssociationStore{existing: map[pair]bool{}}
	emitter := &fakeEmitter{err: errors.New("broker unavailable")}

	summary, err := newTestReconciler(customers, products, store, emitter).Reconcile(
		context.Background(), strings.NewReader("1|10|20230615143000\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Failed)
}
