package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"study-assistant-go/internal/config"
	"study-assistant-go/internal/model"
	"study-assistant-go/pkg/log"
)

var DB *gorm.DB

// InitDB 根据配置初始化全局数据库连接并迁移表结构
func InitDB(cfg config.DatabaseConfig) {
	var err error
	DB, err = Open(cfg.Driver, cfg.DSN)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}
	if err := AutoMigrate(DB); err != nil {
		log.Fatal("failed to migrate database", err)
	}
	log.Infof("%s database connected successfully", driverName(cfg.Driver))
}

// Open 打开一个 GORM 连接。driver 为空时使用 sqlite。
func Open(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		// 唯一约束冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driverName(driver) {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driverName(driver) == "sqlite" {
		// SQLite 只允许单写者
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// AutoMigrate 创建或更新全部表结构，可重复执行。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Document{},
		&model.Question{},
		&model.Session{},
		&model.Attempt{},
	)
}

func driverName(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "" {
		return "sqlite"
	}
	return d
}
