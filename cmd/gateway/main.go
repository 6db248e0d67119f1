// セッションゲート付きゲートウェイのエントリポイント。
// /admin と /katie-export へのアクセスをセッションCookieの有無で制限し、
// それ以外のリクエストを上流のWebアプリケーションへ転送する。
package main

import (
	"log"

	"github.com/nao1215/sessiongate/internal/config"
	"github.com/nao1215/sessiongate/internal/gateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := gateway.NewServer(cfg)
	if err != nil {
		log.Fatalf("Gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Gatewayサービスを起動します: %s (upstream=%s)", cfg.Addr(), cfg.UpstreamURL)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}
