package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // 空ならdisable

	JWTSecret string // JWT署名シークレット（認証基盤と共有）

	RedisAddr string // キャッシュ・pub/sub用（空なら無効）

	MidtransServerKey string // サーバーキー（署名検証にも使う）
	MidtransClientKey string
	MidtransEnv       string // sandbox/production

	ShippingAPIKey           string // 配送料APIのキー
	ShippingBaseURL          string
	ShippingOriginDistrictID int64 // 店舗側に設定がない時の発送元

	WebhookSharedSecret string // 内部フックの共有シークレット

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	SiteURL      string // メール内リンク用

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  os.Getenv("POSTGRES_SSLMODE"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransEnv:       os.Getenv("MIDTRANS_ENV"),

		ShippingAPIKey:  os.Getenv("SHIPPING_API_KEY"),
		ShippingBaseURL: os.Getenv("SHIPPING_BASE_URL"),

		WebhookSharedSecret: os.Getenv("WEBHOOK_SHARED_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		SiteURL:      os.Getenv("SITE_URL"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("SMTP_PORT must be number: %w", err)
		}
		cfg.SMTPPort = p
	}

	if v := os.Getenv("SHIPPING_ORIGIN_DISTRICT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SHIPPING_ORIGIN_DISTRICT_ID must be number: %w", err)
		}
		cfg.ShippingOriginDistrictID = id
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MidtransServerKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_SERVER_KEY is required")
	}
	if cfg.MidtransClientKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_CLIENT_KEY is required")
	}
	if cfg.ShippingAPIKey == "" {
		return Config{}, fmt.Errorf("SHIPPING_API_KEY is required")
	}
	if cfg.ShippingBaseURL == "" {
		return Config{}, fmt.Errorf("SHIPPING_BASE_URL is required")
	}
	if cfg.WebhookSharedSecret == "" {
		return Config{}, fmt.Errorf("WEBHOOK_SHARED_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
