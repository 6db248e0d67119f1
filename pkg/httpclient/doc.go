// Package httpclient はゲートウェイから上流アプリケーションへのHTTP通信を行うクライアントを提供する。
//
// 上流のヘルスチェックエンドポイントの確認など、JSON APIの呼び出しに使用する。
// コンテキストに設定されたリクエストIDはX-Request-IDヘッダーとして伝播する。
package httpclient
