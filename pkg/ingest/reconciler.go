package ingest

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/kelmerpassos/ipet-api/pkg/kafka"
	"github.com/kelmerpassos/ipet-api/pkg/metrics"
	"github.com/kelmerpassos/ipet-api/pkg/models"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// CustomerFinder resolves customers referenced by the offline base.
type CustomerFinder interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

// ProductFinder resolves products referenced by the offline base.
type ProductFinder interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// AssociationStore persists customer/product associations.
type AssociationStore interface {
	Create(ctx context.Context, assoc *models.Association) (*models.Association, error)
	GetByPair(ctx context.Context, customerID, productID int64) (*models.Association, error)
}

// EventEmitter publishes association lifecycle events.
type EventEmitter interface {
	EmitAssociationCreated(ctx context.Context, assoc *models.Association, source string) error
}

// Summary reports the outcome of one reconciliation run.
type Summary struct {
	Lines       int
	Created     int
	Duplicates  int
	Unresolved  int
	ParseErrors int
	Failed      int
}

// Reconciler applies offline base records to the association store.
type Reconciler struct {
	customers CustomerFinder
	products  ProductFinder
	store     AssociationStore
	emitter   EventEmitter
	logger    ectologger.Logger
}

// NewReconciler creates a new reconciler. The emitter may be nil when event
// publishing is disabled.
func NewReconciler(
	customers CustomerFinder,
	products ProductFinder,
	store AssociationStore,
	emitter EventEmitter,
	logger ectologger.Logger,
) *Reconciler {
	return &Reconciler{
		customers: customers,
		products:  products,
		store:     store,
		emitter:   emitter,
		logger:    logger,
	}
}

// Reconcile streams lines from the offline base file and applies each record
// independently. One bad line never aborts the run; the summary accounts for
// every line read.
func (r *Reconciler) Reconcile(ctx context.Context, file io.Reader) (*Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "Reconciler.Reconcile")
	defer span.End()

	summary := &Summary{}
	scanner := bufio.NewScanner(file)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		summary.Lines++

		record, err := Parse(line, lineNumber)
		if err != nil {
			summary.ParseErrors++
			metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeParseError).Inc()
			r.logger.WithContext(ctx).WithError(err).Warn("Skipping unparseable record")
			continue
		}

		r.apply(ctx, record, summary)
	}

	if err := scanner.Err(); err != nil {
		return summary, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"lines":        summary.Lines,
		"created":      summary.Created,
		"duplicates":   summary.Duplicates,
		"unresolved":   summary.Unresolved,
		"parse_errors": summary.ParseErrors,
		"failed":       summary.Failed,
	}).Info("Reconciliation complete")

	return summary, nil
}

func (r *Reconciler) apply(ctx context.Context, record *Record, summary *Summary) {
	fields := map[string]any{
		"customer_id": record.CustomerID,
		"product_id":  record.ProductID,
	}

	// Probe for an existing association before resolving references, so a
	// record seen on a previous run stays a duplicate even when lookups fail.
	existing, err := r.store.GetByPair(ctx, record.CustomerID, record.ProductID)
	if err != nil {
		summary.Failed++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to look up association")
		return
	}
	if existing != nil {
		summary.Duplicates++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		r.logger.WithContext(ctx).WithFields(fields).Info("Customer already associated with product")
		return
	}

	customer, err := r.customers.GetByID(ctx, record.CustomerID)
	if err != nil {
		summary.Failed++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to look up customer")
		return
	}
	product, err := r.products.GetByID(ctx, record.ProductID)
	if err != nil {
		summary.Failed++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to look up product")
		return
	}
	if customer == nil || product == nil {
		summary.Unresolved++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeUnresolved).Inc()
		r.logger.WithContext(ctx).WithFields(fields).Error("Record references unknown customer or product")
		return
	}

	assoc := &models.Association{
		CustomerID:    record.CustomerID,
		ProductID:     record.ProductID,
		CurrentStatus: models.StatusActive,
		CreatedAt:     record.CreatedAt,
	}
	created, err := r.store.Create(ctx, assoc)
	if err != nil {
		summary.Failed++
		metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to create association")
		return
	}

	summary.Created++
	metrics.SyncRecordsTotal.WithLabelValues(metrics.OutcomeCreated).Inc()

	if r.emitter != nil {
		if err := r.emitter.EmitAssociationCreated(ctx, created, kafka.SourceOfflineBase); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to emit association event")
		}
	}
}
