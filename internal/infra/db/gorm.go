package db

import (
	"fmt"

	"geraiku/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect は設定からDSNを組み立てて *gorm.DB を返す。
// 接続情報の検証はconfig.Loadが済ませている。
func Connect(cfg config.Config) (*gorm.DB, error) {
	ssl := cfg.PostgresSSLMode
	if ssl == "" {
		ssl = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser,
		cfg.PostgresPassword, cfg.PostgresDB, ssl,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}
