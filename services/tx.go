package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// forUpdate adds a row lock on dialects that support one. SQLite serializes
// writers on its own.
func forUpdate(db *gorm.DB, table string) *gorm.DB {
	if !isPostgres(db) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: table}})
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
