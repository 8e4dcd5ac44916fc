package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	// 바이낸스 API 설정
	Binance struct {
		APIKey     string        `envconfig:"BINANCE_API_KEY" required:"true"`
		SecretKey  string        `envconfig:"BINANCE_API_SECRET" required:"true"`
		UseTestnet bool          `envconfig:"BINANCE_USE_TESTNET" default:"false"`
		Timeout    time.Duration `envconfig:"BINANCE_TIMEOUT" default:"10s"`
		BaseURL    string        `envconfig:"BINANCE_BASE_URL"`
	}

	// 디스코드 웹훅 설정 (비어 있으면 알림을 보내지 않음)
	Discord struct {
		TradeWebhook string `envconfig:"DISCORD_TRADE_WEBHOOK"`
		ErrorWebhook string `envconfig:"DISCORD_ERROR_WEBHOOK"`
		InfoWebhook  string `envconfig:"DISCORD_INFO_WEBHOOK"`
	}

	// 애플리케이션 설정
	App struct {
		QuoteAsset     string        `envconfig:"QUOTE_ASSET" default:"USDT"`
		BalanceRefresh time.Duration `envconfig:"BALANCE_REFRESH" default:"5s"`
		PriceRefresh   time.Duration `envconfig:"PRICE_REFRESH" default:"1s"`
		LiveStream     bool          `envconfig:"LIVE_STREAM" default:"false"`
		LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
		LogFile        string        `envconfig:"LOG_FILE"`
		MetricsAddr    string        `envconfig:"METRICS_ADDR"`
	}

	// 거래 설정
	Trading struct {
		TriggerPct     decimal.Decimal `envconfig:"SL_TRIGGER_PCT" default:"1"`
		LimitOffsetPct decimal.Decimal `envconfig:"SL_LIMIT_OFFSET_PCT" default:"0.1"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Binance.APIKey == "" || cfg.Binance.SecretKey == "" {
		return fmt.Errorf("BINANCE_API_KEY와 BINANCE_API_SECRET은 필수입니다")
	}

	if strings.TrimSpace(cfg.App.QuoteAsset) == "" {
		return fmt.Errorf("QUOTE_ASSET은 비어 있을 수 없습니다")
	}

	if cfg.Binance.Timeout <= 0 {
		return fmt.Errorf("BINANCE_TIMEOUT은 0보다 커야 합니다")
	}

	if cfg.App.BalanceRefresh < time.Second {
		return fmt.Errorf("BALANCE_REFRESH는 1초 이상이어야 합니다")
	}

	if cfg.App.PriceRefresh < 100*time.Millisecond {
		return fmt.Errorf("PRICE_REFRESH는 100ms 이상이어야 합니다")
	}

	if !cfg.Trading.TriggerPct.IsPositive() || cfg.Trading.TriggerPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("SL_TRIGGER_PCT는 0 초과 100 미만이어야 합니다")
	}

	if cfg.Trading.LimitOffsetPct.IsNegative() {
		return fmt.Errorf("SL_LIMIT_OFFSET_PCT는 음수일 수 없습니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
// .env 파일은 있으면 읽고, 없으면 환경변수만 사용합니다.
func LoadConfig() (*Config, error) {
	// .env 파일 로드
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
	}

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}
	cfg.App.QuoteAsset = strings.ToUpper(strings.TrimSpace(cfg.App.QuoteAsset))

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
