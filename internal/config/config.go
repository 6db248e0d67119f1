// Package config はゲートウェイの設定を環境変数から読み込む。
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はゲートウェイサービスの設定。
// セッションゲートの保護パスやCookie名は固定値であり、ここでは扱わない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// UpstreamURL はプロキシ先の上流アプリケーションのベースURL。
	UpstreamURL string `env:"UPSTREAM_URL" envDefault:"http://localhost:3000"`
	// UpstreamHealthPath は上流のヘルスチェックパス。/readyz で使用する。
	UpstreamHealthPath string `env:"UPSTREAM_HEALTH_PATH" envDefault:"/api/health"`
	// UpstreamTimeout は上流への通信タイムアウト。
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// Load は環境変数から設定を読み込み、検証する。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数のパースに失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の妥当性を検証する。
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORTが空です")
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return fmt.Errorf("UPSTREAM_URLのパースに失敗: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("UPSTREAM_URLのスキームが不正です: %q", c.UpstreamURL)
	}
	if u.Host == "" {
		return fmt.Errorf("UPSTREAM_URLにホストがありません: %q", c.UpstreamURL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUTは正の値である必要があります: %v", c.UpstreamTimeout)
	}
	return nil
}

// Addr はリッスンアドレスを返す。
func (c Config) Addr() string {
	return ":" + c.Port
}
