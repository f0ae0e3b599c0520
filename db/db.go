package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hoaxify/config"
)

// Open connects to MySQL when a DSN is configured, falling back to SQLite
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	}
	if cfg.DebugMode {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	var dialector gorm.Dialector
	if cfg.MySQLDSN != "" {
		log.Info().Msg("using MySQL database")
		dialector = mysql.Open(cfg.MySQLDSN)
	} else {
		log.Info().Str("file", cfg.SQLiteFile).Msg("using SQLite database")
		dialector = sqlite.Open(cfg.SQLiteFile + "?_foreign_keys=on&_busy_timeout=5000")
	}
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MySQLDSN == "" {
		// SQLite allows a single writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
