package middleware

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName は開発環境（HTTP）で認証ライブラリが発行するセッションCookie名。
	SessionCookieName = "next-auth.session-token"
	// SecureSessionCookieName は本番環境（HTTPS）で発行される __Secure- 接頭辞付きのセッションCookie名。
	SecureSessionCookieName = "__Secure-next-auth.session-token"
	// LoginPath は未認証リクエストのリダイレクト先となるログインページのパス。
	LoginPath = "/auth"
)

// GateConfig はセッションゲートの設定。
type GateConfig struct {
	// ProtectedPrefixes は認証が必要なパスの接頭辞。先頭から順に照合する。
	ProtectedPrefixes []string
	// SessionCookieNames はセッションありとみなすCookie名。いずれか1つが存在すればよい。
	SessionCookieNames []string
	// LoginPath はリダイレクト先のパス。
	LoginPath string
}

// DefaultGateConfig は /admin と /katie-export を保護するデフォルト設定を返す。
func DefaultGateConfig() GateConfig {
	return GateConfig{
		ProtectedPrefixes:  []string{"/admin", "/katie-export"},
		SessionCookieNames: []string{SessionCookieName, SecureSessionCookieName},
		LoginPath:          LoginPath,
	}
}

// CookieLookup はリクエストに指定名のCookieが存在するかを返す。
type CookieLookup func(name string) bool

// RequestCookies は *http.Request のCookieからCookieLookupを生成する。
// 値の中身は見ず、存在のみを判定する。
func RequestCookies(r *http.Request) CookieLookup {
	return func(name string) bool {
		_, err := r.Cookie(name)
		return err == nil
	}
}

// Decision はゲートの判定結果。Redirectがnilの場合はそのまま通過させる。
type Decision struct {
	// Redirect はリダイレクト先URL。通過の場合はnil。
	Redirect *url.URL
}

// Continue はリクエストを通過させる判定かどうかを返す。
func (d Decision) Continue() bool {
	return d.Redirect == nil
}

// IsProtected はパスが保護対象の接頭辞で始まるかを返す。
// 大文字小文字を区別する単純な文字列接頭辞の比較であり、パスセグメントの境界は考慮しない。
// そのため "/adminX" も "/admin" に一致する。
func (cfg GateConfig) IsProtected(path string) bool {
	for _, p := range cfg.ProtectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// HasSession はセッションCookieのいずれかが存在するかを返す。
// トークンの署名や有効期限の検証は認証ライブラリ側の責務であり、ここでは行わない。
func (cfg GateConfig) HasSession(lookup CookieLookup) bool {
	if lookup == nil {
		return false
	}
	for _, name := range cfg.SessionCookieNames {
		if lookup(name) {
			return true
		}
	}
	return false
}

// Decide はURLとCookieの有無からゲートの判定を行う。
// 保護対象かつセッションCookieが無い場合、元のURLを複製してパスのみをLoginPathに
// 置き換えたURLへのリダイレクトを返す。クエリ文字列など他の要素は保持する。
// 引数のURLは変更しない。
func (cfg GateConfig) Decide(u *url.URL, lookup CookieLookup) Decision {
	if u == nil || !cfg.IsProtected(u.Path) {
		return Decision{}
	}
	if cfg.HasSession(lookup) {
		return Decision{}
	}

	redirect := *u
	redirect.Path = cfg.LoginPath
	redirect.RawPath = ""
	return Decision{Redirect: &redirect}
}

// SessionGate はセッションCookieの無いリクエストをログインページへリダイレクトするGinミドルウェアを返す。
// リダイレクトは307で行い、後続のハンドラは実行しない。
func SessionGate(cfg GateConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := cfg.Decide(c.Request.URL, RequestCookies(c.Request))
		if d.Continue() {
			c.Next()
			return
		}

		log.Printf("[Gate] セッションCookieが無いためリダイレクトします: path=%s, request_id=%s",
			c.Request.URL.Path, GetRequestID(c))
		c.Header("Location", d.Redirect.String())
		c.AbortWithStatus(http.StatusTemporaryRedirect)
	}
}
