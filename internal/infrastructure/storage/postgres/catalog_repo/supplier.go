package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/catalogs/supplier"
	"rxledger/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*supplier.Supplier](
			txManager,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// FindByGSTIN retrieves supplier by GSTIN.
func (r *SupplierRepo) FindByGSTIN(ctx context.Context, gstin string) (*supplier.Supplier, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"gstin": gstin}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	s, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", gstin)
		}
		return nil, err
	}
	return s, nil
}

// GetForUpdate retrieves supplier with row lock.
func (r *SupplierRepo) GetForUpdate(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	return r.BaseCatalogRepo.GetForUpdate(ctx, supplierID)
}
