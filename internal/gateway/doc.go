// Package gateway はセッションゲート付きのリバースプロキシサービスの内部実装を提供する。
//
// 外部からのリクエストを受け付け、/admin と /katie-export 配下へのアクセスに
// セッションCookieが無い場合はログインページ（/auth）へリダイレクトする。
// それ以外のリクエストは上流のWebアプリケーションへそのまま転送する。
// セッショントークンの検証は上流の認証ライブラリが担当する。
package gateway
