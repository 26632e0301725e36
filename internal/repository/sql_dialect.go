package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbDialectName 获取小写方言名，默认 sqlite
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

func supportsRowLocking(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "mysql":
		return true
	default:
		// sqlite 在库级别串行化写入
		return false
	}
}

// forUpdate 在支持的数据库上追加 SELECT ... FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	if !supportsRowLocking(dbDialectName(db)) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
