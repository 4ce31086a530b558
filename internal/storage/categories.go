package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/model"
)

// GetCategories returns categories ordered by type and name. An empty
// categoryType returns both income and expense categories.
func (s *SQLiteStorage) GetCategories(ctx context.Context, categoryType model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, name, type, color, created_at FROM categories`
	var args []any
	if categoryType != "" {
		if !categoryType.Valid() {
			return nil, fmt.Errorf("%w: type %q", ErrInvalidCategory, categoryType)
		}
		query += ` WHERE type = ?`
		args = append(args, string(categoryType))
	}
	query += ` ORDER BY type, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "type", categoryType)
	return categories, nil
}

// GetCategoryByID returns a single category.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(int64(id)); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, created_at FROM categories WHERE id = ?`, id)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory inserts a new category. An empty color uses the default.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat := model.Category{
		Name:  strings.TrimSpace(name),
		Type:  categoryType,
		Color: color,
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	if cat.Color == "" {
		cat.Color = model.DefaultCategoryColor
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, color) VALUES (?, ?, ?)`,
		cat.Name, string(cat.Type), cat.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category %q (%s): %w", cat.Name, cat.Type, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("Created category", "id", id, "name", cat.Name, "type", cat.Type)
	return s.GetCategoryByID(ctx, int(id))
}

// DeleteCategory removes a category. Transactions that used it become uncategorized.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(int64(id)); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	slog.Info("Deleted category", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat      model.Category
		catType  string
		createAt sql.NullTime
	)
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &cat.Color, &createAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cat, err
		}
		return cat, fmt.Errorf("failed to scan category: %w", err)
	}
	cat.Type = model.TransactionType(catType)
	if createAt.Valid {
		cat.CreatedAt = createAt.Time
	}
	return cat, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
