// Package middleware はゲートウェイで使用するGinミドルウェアを提供する。
//
// 保護パスへのアクセスをセッションCookieの有無で制限するセッションゲート、
// リクエストパスの正規化、リクエストIDの付与、パニックリカバリを含む。
// セッショントークンの検証は外部の認証ライブラリが行うため、このパッケージでは扱わない。
package middleware
