package database

import (
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/penwise/backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB 按类型打开数据库并完成表结构迁移
func InitDB(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		// 使用 github.com/glebarez/sqlite 驱动，需要显式打开外键约束
		dialector = sqlite.Open(withSQLiteForeignKeys(dsn))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 迁移所有业务表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.StyleProfile{},
		&model.StyleInsights{},
		&model.CommonPhrase{},
		&model.TopicArea{},
		&model.GeneratedContent{},
		&model.ContentSample{},
	)
}

func withSQLiteForeignKeys(dsn string) string {
	if dsn == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_pragma=foreign_keys(1)"
	}
	return dsn + "?_pragma=foreign_keys(1)"
}
