package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rxledger/internal/core/apperror"
	appctx "rxledger/internal/core/context"
	"rxledger/internal/domain/catalogs/medicine"
	"rxledger/internal/infrastructure/storage/postgres"
)

const medicineTable = "cat_medicines"

// MedicineRepo implements medicine.Repository.
type MedicineRepo struct {
	*BaseCatalogRepo[*medicine.Medicine]
}

// NewMedicineRepo creates a new medicine repository.
func NewMedicineRepo(txManager *postgres.TxManager) *MedicineRepo {
	return &MedicineRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*medicine.Medicine](
			txManager,
			medicineTable,
			postgres.ExtractDBColumns[medicine.Medicine](),
			func() *medicine.Medicine { return &medicine.Medicine{} },
		),
	}
}

var _ medicine.Repository = (*MedicineRepo)(nil)

// FindByBarcode retrieves medicine by barcode.
func (r *MedicineRepo) FindByBarcode(ctx context.Context, barcode string) (*medicine.Medicine, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	m, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("medicine", barcode)
		}
		return nil, err
	}
	return m, nil
}

// ListBelowReorderLevel retrieves medicines whose total on-hand stock
// across all batches is below the configured reorder level.
// Medicines with no batches count as zero stock.
func (r *MedicineRepo) ListBelowReorderLevel(ctx context.Context) ([]*medicine.Medicine, error) {
	sql := fmt.Sprintf(`
		SELECT m.*
		FROM %s m
		LEFT JOIN (
			SELECT medicine_id, SUM(current_stock) AS total_stock
			FROM reg_inventory_batches
			GROUP BY medicine_id
		) b ON b.medicine_id = m.id
		WHERE m.hospital_id = $1
		  AND m.deletion_mark = false
		  AND m.reorder_level > 0
		  AND COALESCE(b.total_stock, 0) < m.reorder_level
		ORDER BY m.name
	`, medicineTable)

	var items []*medicine.Medicine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, appctx.GetHospitalID(ctx)); err != nil {
		return nil, fmt.Errorf("list below reorder level: %w", err)
	}

	return items, nil
}
