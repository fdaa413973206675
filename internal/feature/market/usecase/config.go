package usecase

import (
	"log/slog"
	"os"
	"strconv"
)

const (
	// DefaultMinPrice は価格の下限です。
	DefaultMinPrice int64 = 100
	// DefaultMaxHistoryDays は価格履歴ウィンドウの最大日数です。
	DefaultMaxHistoryDays = 30
	// DefaultAmplification はティックごとの変動率（%）に掛ける増幅係数です。
	DefaultAmplification = 5.0
	// DefaultHistoryDamping は初期履歴生成時の変動を抑える除数です。
	DefaultHistoryDamping = 10.0
)

// Config はマーケットシミュレーションの定数を保持します。
type Config struct {
	MinPrice       int64   // 価格の下限
	MaxHistoryDays int     // 履歴ウィンドウの上限
	Amplification  float64 // ライブティックの増幅係数
	HistoryDamping float64 // 初期履歴の減衰係数
}

// DefaultConfig はデフォルト値で構成されたConfigを返します。
func DefaultConfig() Config {
	return Config{
		MinPrice:       DefaultMinPrice,
		MaxHistoryDays: DefaultMaxHistoryDays,
		Amplification:  DefaultAmplification,
		HistoryDamping: DefaultHistoryDamping,
	}
}

// LoadConfig は環境変数からマーケット設定を読み込みます。
// 未設定または不正な値の場合はデフォルト値を使用します。
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v, ok := envInt("MARKET_MIN_PRICE"); ok && v > 0 {
		cfg.MinPrice = int64(v)
	}
	if v, ok := envInt("MARKET_MAX_HISTORY_DAYS"); ok && v > 0 {
		cfg.MaxHistoryDays = v
	}
	if v, ok := envFloat("MARKET_AMPLIFICATION"); ok && v > 0 {
		cfg.Amplification = v
	}
	if v, ok := envFloat("MARKET_HISTORY_DAMPING"); ok && v > 0 {
		cfg.HistoryDamping = v
	}
	return cfg
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", raw)
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("ignoring invalid float setting", "key", key, "value", raw)
		return 0, false
	}
	return v, true
}
