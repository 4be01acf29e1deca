package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"rxledger/internal/core/apperror"
	"rxledger/internal/domain/catalogs/currency"
	"rxledger/internal/infrastructure/storage/postgres"
)

const currencyTable = "cat_currencies"

// CurrencyRepo implements currency.Repository.
type CurrencyRepo struct {
	*BaseCatalogRepo[*currency.Currency]
}

// NewCurrencyRepo creates a new currency repository.
func NewCurrencyRepo(txManager *postgres.TxManager) *CurrencyRepo {
	return &CurrencyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*currency.Currency](
			txManager,
			currencyTable,
			postgres.ExtractDBColumns[currency.Currency](),
			func() *currency.Currency { return &currency.Currency{} },
		),
	}
}

var _ currency.Repository = (*CurrencyRepo)(nil)

// GetBaseCurrency retrieves the hospital's accounting currency.
func (r *CurrencyRepo) GetBaseCurrency(ctx context.Context) (*currency.Currency, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_base": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("currency", "base")
		}
		return nil, err
	}
	return c, nil
}

// GetByISOCode retrieves currency by ISO alphabetic code.
func (r *CurrencyRepo) GetByISOCode(ctx context.Context, isoCode string) (*currency.Currency, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"iso_code": strings.ToUpper(isoCode)}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("currency", isoCode)
		}
		return nil, err
	}
	return c, nil
}
