// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/reports"
	"rxledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository with read-only aggregate queries.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetSupplierOutstanding generates the supplier outstanding report with aging.
func (r *ReportRepo) GetSupplierOutstanding(ctx context.Context, filter reports.SupplierOutstandingFilter) (*reports.SupplierOutstandingReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		WITH settlement AS (
			SELECT
				i.id AS invoice_id,
				COALESCE((SELECT SUM(p.amount) FROM doc_payments p
					WHERE p.invoice_id = i.id AND p.status = 'approved'
					  AND p.deletion_mark = false AND p.date <= $2), 0) AS paid,
				COALESCE((SELECT SUM(cn.credit_amount) FROM doc_credit_notes cn
					WHERE cn.invoice_id = i.id AND cn.posted = true
					  AND cn.deletion_mark = false AND cn.date <= $2), 0) AS credited
			FROM doc_purchase_invoices i
			WHERE i.hospital_id = $1 AND i.posted = true
			  AND i.deletion_mark = false AND i.date <= $2
		)
		SELECT
			i.supplier_id,
			s.name AS supplier_name,
			i.id AS invoice_id,
			i.number AS invoice_number,
			i.supplier_invoice_number,
			i.date AS invoice_date,
			i.grand_total,
			st.paid,
			st.credited,
			i.grand_total - st.paid - st.credited AS balance
		FROM doc_purchase_invoices i
		JOIN settlement st ON st.invoice_id = i.id
		JOIN cat_suppliers s ON s.id = i.supplier_id
		WHERE 1 = 1
	`
	args := []any{appctx.GetHospitalID(ctx), asOfDate}
	argIndex := 3

	if len(filter.SupplierIDs) > 0 {
		placeholders := make([]string, len(filter.SupplierIDs))
		for i, sID := range filter.SupplierIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, sID)
			argIndex++
		}
		query += fmt.Sprintf(" AND i.supplier_id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.ExcludeSettled {
		query += " AND i.grand_total - st.paid - st.credited > 0"
	}

	query += " ORDER BY s.name, i.date, i.number"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.SupplierOutstandingItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("supplier outstanding report: %w", err)
	}

	totalOutstanding := types.Zero()
	byBucket := make(map[string]types.Money)
	for i := range items {
		items[i].AgeDays = int(asOfDate.Sub(items[i].InvoiceDate).Hours() / 24)
		items[i].AgingBucket = reports.AgingBucket(items[i].AgeDays)

		totalOutstanding = totalOutstanding.Add(items[i].Balance)

		bucket, ok := byBucket[items[i].AgingBucket]
		if !ok {
			bucket = types.Zero()
		}
		byBucket[items[i].AgingBucket] = bucket.Add(items[i].Balance)
	}

	return &reports.SupplierOutstandingReport{
		AsOfDate:         asOfDate,
		Items:            items,
		TotalItems:       len(items),
		TotalOutstanding: totalOutstanding,
		ByBucket:         byBucket,
	}, nil
}

// GetGSTInputSummary generates the input tax summary over posted invoices.
func (r *ReportRepo) GetGSTInputSummary(ctx context.Context, filter reports.GSTInputFilter) (*reports.GSTInputReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	groupCols := []string{}
	selectCols := []string{}
	if filter.GroupByHSN {
		groupCols = append(groupCols, "m.hsn_code")
		selectCols = append(selectCols, "m.hsn_code")
	}
	if filter.GroupByRate {
		groupCols = append(groupCols, "l.gst_rate")
		selectCols = append(selectCols, "l.gst_rate")
	}
	if len(groupCols) == 0 {
		// Default grouping: per supplier GSTIN
		groupCols = append(groupCols, "s.gstin")
	}
	if containsCol(groupCols, "s.gstin") {
		selectCols = append(selectCols, "COALESCE(s.gstin, '') AS supplier_gstin")
	}

	selectCols = append(selectCols,
		"SUM(l.taxable_amount) AS taxable_value",
		"SUM(l.cgst_amount) AS cgst",
		"SUM(l.sgst_amount) AS sgst",
		"SUM(l.igst_amount) AS igst",
		"COUNT(DISTINCT i.id) AS invoice_count",
	)

	query := fmt.Sprintf(`
		SELECT %s
		FROM doc_purchase_invoice_lines l
		JOIN doc_purchase_invoices i ON i.id = l.document_id
		JOIN cat_medicines m ON m.id = l.medicine_id
		JOIN cat_suppliers s ON s.id = i.supplier_id
		WHERE i.hospital_id = $1 AND i.posted = true AND i.deletion_mark = false
		  AND i.date >= $2 AND i.date < $3
	`, strings.Join(selectCols, ", "))

	args := []any{appctx.GetHospitalID(ctx), filter.FromDate, filter.ToDate}
	argIndex := 4

	if len(filter.SupplierIDs) > 0 {
		placeholders := make([]string, len(filter.SupplierIDs))
		for i, sID := range filter.SupplierIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, sID)
			argIndex++
		}
		query += fmt.Sprintf(" AND i.supplier_id IN (%s)", strings.Join(placeholders, ","))
	}
	if len(filter.HSNCodes) > 0 {
		placeholders := make([]string, len(filter.HSNCodes))
		for i, hsn := range filter.HSNCodes {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, hsn)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.hsn_code IN (%s)", strings.Join(placeholders, ","))
	}

	query += fmt.Sprintf(" GROUP BY %s ORDER BY %s", strings.Join(groupCols, ", "), strings.Join(groupCols, ", "))

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.GSTInputItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("gst input summary: %w", err)
	}

	totalTaxable, totalCGST, totalSGST, totalIGST := types.Zero(), types.Zero(), types.Zero(), types.Zero()
	for _, item := range items {
		totalTaxable = totalTaxable.Add(item.TaxableValue)
		totalCGST = totalCGST.Add(item.CGST)
		totalSGST = totalSGST.Add(item.SGST)
		totalIGST = totalIGST.Add(item.IGST)
	}

	return &reports.GSTInputReport{
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		Items:        items,
		TotalItems:   len(items),
		TotalTaxable: totalTaxable,
		TotalCGST:    totalCGST,
		TotalSGST:    totalSGST,
		TotalIGST:    totalIGST,
	}, nil
}

// GetExpiringStock generates the near-expiry stock report.
func (r *ReportRepo) GetExpiringStock(ctx context.Context, filter reports.ExpiringStockFilter) (*reports.ExpiringStockReport, error) {
	withinDays := filter.WithinDays
	if withinDays <= 0 {
		withinDays = 90
	}
	asOfDate := time.Now()
	cutoff := asOfDate.AddDate(0, 0, withinDays)

	query := `
		SELECT
			b.branch_id,
			br.name AS branch_name,
			b.medicine_id,
			m.name AS medicine_name,
			b.id AS batch_id,
			b.batch_number,
			b.expiry_date,
			b.current_stock AS quantity,
			b.purchase_rate AS unit_cost,
			(b.current_stock::numeric / 10000.0) * b.purchase_rate AS stock_value
		FROM reg_inventory_batches b
		JOIN cat_branches br ON br.id = b.branch_id
		JOIN cat_medicines m ON m.id = b.medicine_id
		WHERE m.hospital_id = $1
		  AND b.current_stock > 0
		  AND b.expiry_date < $2
	`
	args := []any{appctx.GetHospitalID(ctx), cutoff}
	argIndex := 3

	if !filter.IncludeExpired {
		query += fmt.Sprintf(" AND b.expiry_date >= $%d", argIndex)
		args = append(args, asOfDate)
		argIndex++
	}

	if len(filter.BranchIDs) > 0 {
		placeholders := make([]string, len(filter.BranchIDs))
		for i, bID := range filter.BranchIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, bID)
			argIndex++
		}
		query += fmt.Sprintf(" AND b.branch_id IN (%s)", strings.Join(placeholders, ","))
	}
	if len(filter.MedicineIDs) > 0 {
		placeholders := make([]string, len(filter.MedicineIDs))
		for i, mID := range filter.MedicineIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, mID)
			argIndex++
		}
		query += fmt.Sprintf(" AND b.medicine_id IN (%s)", strings.Join(placeholders, ","))
	}

	query += " ORDER BY b.expiry_date, br.name, m.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.ExpiringStockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("expiring stock report: %w", err)
	}

	totalValue := types.Zero()
	for i := range items {
		items[i].DaysToExpiry = int(items[i].ExpiryDate.Sub(asOfDate).Hours() / 24)
		totalValue = totalValue.Add(items[i].StockValue)
	}

	return &reports.ExpiringStockReport{
		AsOfDate:   asOfDate,
		WithinDays: withinDays,
		Items:      items,
		TotalItems: len(items),
		TotalValue: totalValue,
	}, nil
}

var journalDocumentTypes = []string{"purchase_order", "purchase_invoice", "payment", "credit_note"}

// journalSources maps a document type to its table and total amount column.
var journalSources = map[string]struct {
	table     string
	amountCol string
}{
	"purchase_order":   {"doc_purchase_orders", "grand_total"},
	"purchase_invoice": {"doc_purchase_invoices", "grand_total"},
	"payment":          {"doc_payments", "amount"},
	"credit_note":      {"doc_credit_notes", "credit_amount"},
}

// GetDocumentJournal retrieves documents across document types for journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocumentTypes
	}

	args := []any{appctx.GetHospitalID(ctx)}
	argIndex := 2

	var unions []string
	for _, docType := range docTypes {
		src, ok := journalSources[docType]
		if !ok {
			continue
		}

		q := fmt.Sprintf(`
			SELECT
				d.id, '%s' AS document_type, d.number, d.date, d.posted,
				d.supplier_id, s.name AS supplier_name,
				d.%s AS total_amount,
				'INR' AS currency,
				d.comment AS description,
				d.deletion_mark, d.created_at, d.updated_at
			FROM %s d
			JOIN cat_suppliers s ON s.id = d.supplier_id
			WHERE d.hospital_id = $1 AND d.deletion_mark = false
		`, docType, src.amountCol, src.table)

		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND d.date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND d.date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Posted != nil {
			q += fmt.Sprintf(" AND d.posted = $%d", argIndex)
			args = append(args, *filter.Posted)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND d.number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		if len(filter.SupplierIDs) > 0 {
			placeholders := make([]string, len(filter.SupplierIDs))
			for i, sID := range filter.SupplierIDs {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, sID)
				argIndex++
			}
			q += fmt.Sprintf(" AND d.supplier_id IN (%s)", strings.Join(placeholders, ","))
		}
		if len(filter.BranchIDs) > 0 {
			placeholders := make([]string, len(filter.BranchIDs))
			for i, bID := range filter.BranchIDs {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, bID)
				argIndex++
			}
			q += fmt.Sprintf(" AND d.branch_id IN (%s)", strings.Join(placeholders, ","))
		}

		unions = append(unions, q)
	}

	if len(unions) == 0 {
		return &reports.DocumentJournal{
			Items:      []reports.DocumentJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")
	query += " ORDER BY " + journalOrderBy(filter.SortBy, filter.SortOrder)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: len(items),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetDocumentTypeSummary returns counts and amount totals by document type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocumentTypes
	}

	querier := r.txManager.GetQuerier(ctx)

	var result []reports.DocumentTypeSummary
	for _, docType := range docTypes {
		src, ok := journalSources[docType]
		if !ok {
			continue
		}

		query := fmt.Sprintf(`
			SELECT
				COUNT(*) AS count,
				COUNT(*) FILTER (WHERE posted = true) AS posted_count,
				COALESCE(SUM(%s), 0) AS total_amount
			FROM %s
			WHERE hospital_id = $1 AND deletion_mark = false
		`, src.amountCol, src.table)

		args := []any{appctx.GetHospitalID(ctx)}
		argIndex := 2

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		summary := reports.DocumentTypeSummary{DocumentType: docType}
		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.PostedCount,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

func journalOrderBy(sortBy, sortOrder string) string {
	col := "date"
	switch sortBy {
	case "number":
		col = "number"
	case "type":
		col = "document_type"
	case "amount":
		col = "total_amount"
	}

	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	return fmt.Sprintf("%s %s, number", col, dir)
}

func containsCol(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
