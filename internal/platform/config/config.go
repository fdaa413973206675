// Package config はアプリケーション全体の設定を環境変数から読み込みます。
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultSimulationInterval = 10 * time.Second
	defaultCharacterSource    = "static"
	defaultTradeRateLimit     = 60
)

// AppConfig はサーバー起動時の設定です。
type AppConfig struct {
	HTTPAddr           string        // HTTP_ADDR
	SimulationInterval time.Duration // SIMULATION_INTERVAL（Go の duration 形式）
	CharacterSource    string        // CHARACTER_SOURCE: static | db
	TradeRateLimit     int           // TRADE_RATE_LIMIT: 1分あたりの売買リクエスト上限（0以下で無制限）
}

// LoadDotEnv は .env ファイルが存在すれば読み込みます。既存の環境変数は上書きしません。
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

// LoadConfig は環境変数から AppConfig を読み込みます。不正な値は警告を出して既定値を使います。
func LoadConfig() AppConfig {
	cfg := AppConfig{
		HTTPAddr:           defaultHTTPAddr,
		SimulationInterval: defaultSimulationInterval,
		CharacterSource:    defaultCharacterSource,
		TradeRateLimit:     defaultTradeRateLimit,
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SIMULATION_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Second {
			slog.Warn("invalid SIMULATION_INTERVAL, using default", "value", v, "default", defaultSimulationInterval)
		} else {
			cfg.SimulationInterval = d
		}
	}
	if v := os.Getenv("CHARACTER_SOURCE"); v != "" {
		cfg.CharacterSource = v
	}
	if v := os.Getenv("TRADE_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid TRADE_RATE_LIMIT, using default", "value", v, "default", defaultTradeRateLimit)
		} else {
			cfg.TradeRateLimit = n
		}
	}
	return cfg
}
