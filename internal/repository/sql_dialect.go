package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName resolves the dialect name, defaulting to sqlite.
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// buildSearchLikeCondition builds a case-insensitive OR condition over the
// given columns and returns the number of placeholder args it needs.
// Tags and other JSON-array columns are matched as raw text, which is
// good enough for substring search on both sqlite and postgres.
func buildSearchLikeCondition(db *gorm.DB, columns []string) (string, int) {
	return buildSearchLikeConditionByDialect(dbDialectName(db), columns)
}

func buildSearchLikeConditionByDialect(dialect string, columns []string) (string, int) {
	operator := likeOperatorByDialect(dialect)
	parts := make([]string, 0, len(columns))
	argCount := 0
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		if operator == "LIKE" {
			// sqlite LIKE is case-insensitive for ASCII only when both
			// sides share case, so normalize through lower().
			parts = append(parts, fmt.Sprintf("lower(%s) LIKE ?", trimmed))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s ?", trimmed, operator))
		}
		argCount++
	}
	return strings.Join(parts, " OR "), argCount
}

// repeatLikeArgs repeats the LIKE argument.
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
