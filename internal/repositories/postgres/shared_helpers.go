package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

const pgUniqueViolation = "23505"

// pickDB returns the transaction when one is given, the base handle otherwise.
func pickDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// handleDBError is a package-level helper for handling database errors.
// Not-found and unique violations are mapped to the repository sentinels so
// services can branch on them without knowing the driver.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s failed: %w: %v", operation, repositories.ErrDuplicate, err)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// sqlite without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// applyPagination applies limit/offset when a positive limit is given
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// containsPattern builds a case-insensitive LIKE pattern. Callers compare
// it against LOWER(column) so the query runs the same on postgres and sqlite.
func containsPattern(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(q)) + "%"
}
