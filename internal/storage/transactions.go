package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/service"
	"github.com/shopspring/decimal"
)

const transactionColumns = `
	t.id, t.type, t.category_id, t.amount, t.description, t.transaction_date,
	t.vat_type, t.vat_amount, t.total_with_vat, t.receipt_path, t.notes,
	t.source, t.external_id, t.created_at,
	c.name, c.color`

const transactionFrom = `
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

// CreateTransaction computes VAT fields and inserts the transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := prepareTransaction(txn); err != nil {
		return 0, err
	}

	id, err := insertTransaction(ctx, s.db, txn, "INSERT")
	if err != nil {
		return 0, err
	}
	txn.ID = id

	slog.Info("Created transaction",
		"id", id,
		"type", txn.Type,
		"amount", txn.Amount.String(),
		"vat_type", txn.VATType)
	return id, nil
}

// prepareTransaction normalizes defaults, validates and applies VAT.
func prepareTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.VATType == "" {
		txn.VATType = model.VATNone
	}
	if txn.Source == "" {
		txn.Source = model.SourceManual
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	txn.ApplyVAT()
	return nil
}

func insertTransaction(ctx context.Context, q queryable, txn *model.Transaction, verb string) (int64, error) {
	// #nosec G202 - verb is one of two constants chosen by the caller
	query := verb + ` INTO transactions (
			type, category_id, amount, description, transaction_date,
			vat_type, vat_amount, total_with_vat, receipt_path, notes,
			source, external_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		string(txn.Type),
		nullableInt(txn.CategoryID),
		txn.Amount.String(),
		txn.Description,
		txn.Date.Format(model.DateLayout),
		string(txn.VATType),
		txn.VATAmount.String(),
		txn.TotalWithVAT.String(),
		nullableString(txn.ReceiptPath),
		txn.Notes,
		string(txn.Source),
		nullableString(txn.ExternalID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: category %d does not exist", ErrInvalidTransaction, *txn.CategoryID)
		}
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}
	return id, nil
}

// GetTransaction returns one transaction with its category joined.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+transactionFrom+` WHERE t.id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// likeEscaper makes LIKE wildcards in search text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// GetTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, ErrInvalidDateRange
	}

	var (
		conditions []string
		args       []any
	)
	if filter.Type != "" {
		if !filter.Type.Valid() {
			return nil, fmt.Errorf("%w: type %q", ErrInvalidTransaction, filter.Type)
		}
		conditions = append(conditions, "t.type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "t.transaction_date >= ?")
		args = append(args, filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "t.transaction_date <= ?")
		args = append(args, filter.EndDate.Format(model.DateLayout))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, `(t.description LIKE ? ESCAPE '\' OR t.notes LIKE ? ESCAPE '\')`)
		pattern := "%" + likeEscaper.Replace(search) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + transactionColumns + transactionFrom
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// UpdateTransaction replaces the editable fields of a transaction and
// recomputes its VAT. The receipt, source and external id are kept.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id int64, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := prepareTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			type = ?, category_id = ?, amount = ?, description = ?, transaction_date = ?,
			vat_type = ?, vat_amount = ?, total_with_vat = ?, notes = ?
		WHERE id = ?`,
		string(txn.Type),
		nullableInt(txn.CategoryID),
		txn.Amount.String(),
		txn.Description,
		txn.Date.Format(model.DateLayout),
		string(txn.VATType),
		txn.VATAmount.String(),
		txn.TotalWithVAT.String(),
		txn.Notes,
		id,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: category %d does not exist", ErrInvalidTransaction, *txn.CategoryID)
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}

	txn.ID = id
	slog.Info("Updated transaction", "id", id, "amount", txn.Amount.String())
	return nil
}

// DeleteTransaction removes a transaction and returns its receipt file name,
// empty when it had none, so the caller can delete the file.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateID(id); err != nil {
		return "", err
	}

	var receipt sql.NullString
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT receipt_path FROM transactions WHERE id = ?`, id).Scan(&receipt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Deleted transaction", "id", id, "receipt", receipt.String)
	return receipt.String, nil
}

// SetTransactionReceipt points a transaction at a receipt file and returns
// the previous file name so the caller can remove it.
func (s *SQLiteStorage) SetTransactionReceipt(ctx context.Context, id int64, receipt string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateID(id); err != nil {
		return "", err
	}

	var previous sql.NullString
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT receipt_path FROM transactions WHERE id = ?`, id).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE transactions SET receipt_path = ? WHERE id = ?`,
			nullableString(receipt), id); err != nil {
			return fmt.Errorf("failed to set receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Attached receipt", "id", id, "receipt", receipt)
	return previous.String, nil
}

// SaveImportedTransactions inserts bank statement rows, skipping any whose
// external id is already stored. It returns the number of rows inserted.
func (s *SQLiteStorage) SaveImportedTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range transactions {
		if transactions[i].Source == "" {
			transactions[i].Source = model.SourceOFX
		}
		if err := prepareTransaction(&transactions[i]); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range transactions {
			id, err := insertTransaction(ctx, tx, &transactions[i], "INSERT OR IGNORE")
			if err != nil {
				return fmt.Errorf("failed to import transaction %s: %w", transactions[i].ExternalID, err)
			}
			if id > 0 {
				transactions[i].ID = id
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Imported transactions",
		"received", len(transactions),
		"inserted", inserted,
		"duplicates", len(transactions)-inserted)
	return inserted, nil
}

// GetSummary totals raw amounts by type between start and end inclusive.
func (s *SQLiteStorage) GetSummary(ctx context.Context, start, end time.Time) (*service.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, amount
		FROM transactions
		WHERE transaction_date BETWEEN ? AND ?`,
		start.Format(model.DateLayout), end.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := &service.Summary{}
	for rows.Next() {
		var (
			txnType string
			amount  decimal.Decimal
		)
		if err := rows.Scan(&txnType, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		switch model.TransactionType(txnType) {
		case model.TypeIncome:
			summary.Income = summary.Income.Add(amount)
		case model.TypeExpense:
			summary.Expense = summary.Expense.Add(amount)
		}
		summary.TransactionCount++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	summary.Net = summary.Income.Sub(summary.Expense)

	slog.Debug("computed summary", "count", summary.TransactionCount, "net", summary.Net.String())
	return summary, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn           model.Transaction
		txnType       string
		vatType       string
		source        string
		date          string
		categoryID    sql.NullInt64
		receipt       sql.NullString
		externalID    sql.NullString
		createdAt     sql.NullTime
		categoryName  sql.NullString
		categoryColor sql.NullString
	)

	err := row.Scan(
		&txn.ID, &txnType, &categoryID, &txn.Amount, &txn.Description, &date,
		&vatType, &txn.VATAmount, &txn.TotalWithVAT, &receipt, &txn.Notes,
		&source, &externalID, &createdAt,
		&categoryName, &categoryColor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return txn, err
		}
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return txn, fmt.Errorf("transaction %d has bad date %q: %w", txn.ID, date, err)
	}
	txn.Date = parsed
	txn.Type = model.TransactionType(txnType)
	txn.VATType = model.VATType(vatType)
	txn.Source = model.TransactionSource(source)
	if categoryID.Valid {
		id := int(categoryID.Int64)
		txn.CategoryID = &id
	}
	txn.ReceiptPath = receipt.String
	txn.ExternalID = externalID.String
	if createdAt.Valid {
		txn.CreatedAt = createdAt.Time
	}
	txn.CategoryName = categoryName.String
	txn.CategoryColor = categoryColor.String
	return txn, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
