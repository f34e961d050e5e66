package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TableCounts returns the row count of every given model's table, keyed by
// table name. Used by the status endpoint to report replica size.
func TableCounts(db *gorm.DB, models ...any) (map[string]int64, error) {
	counts := make(map[string]int64, len(models))
	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		counts[stmt.Schema.Table] = count
	}
	return counts, nil
}
