package gateway

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/sessiongate/internal/config"
	"github.com/nao1215/sessiongate/pkg/httpclient"
	"github.com/nao1215/sessiongate/pkg/middleware"
)

// gateMatchers はセッションゲートを適用するパス。
// 各パス自体とその配下（"/admin/..." など）に一致する。
var gateMatchers = []string{"/admin", "/katie-export"}

// hopHeaders はプロキシで転送しないホップバイホップヘッダー。
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Server はゲートウェイサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービスの設定。
	cfg config.Config
	// proxyClient は上流へのプロキシ通信に使うHTTPクライアント。リダイレクトは追跡しない。
	proxyClient *http.Client
	// upstream は上流のヘルスチェックに使うクライアント。
	upstream *httpclient.Client
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CanonicalPath())
	router.Use(gin.Logger())

	s := &Server{
		router: router,
		cfg:    cfg,
		proxyClient: &http.Client{
			Timeout: cfg.UpstreamTimeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		upstream: httpclient.NewWithTimeout(strings.TrimSuffix(cfg.UpstreamURL, "/"), cfg.UpstreamTimeout),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(s.cfg.Addr())
}

// Handler はサーバーのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealthz())
	s.router.GET("/readyz", s.handleReadyz())

	// 上記以外はすべて上流へ転送する。ゲートは一致するパスにのみ適用する。
	s.router.NoRoute(
		matchPaths(gateMatchers, middleware.SessionGate(middleware.DefaultGateConfig())),
		s.handleProxy(),
	)
}

// matchPaths はパスがpatternsのいずれかに一致する場合のみhを実行するハンドラを返す。
// 一致しない場合は何もせず次のハンドラへ進む。
func matchPaths(patterns []string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if matchGate(patterns, c.Request.URL.Path) {
			h(c)
			return
		}
		c.Next()
	}
}

// matchGate はpathがpatternsのいずれか、またはその配下に一致するかを返す。
func matchGate(patterns []string, path string) bool {
	for _, p := range patterns {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// handleHealthz はゲートウェイ自身の死活監視ハンドラを返す。
func (s *Server) handleHealthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleReadyz は上流アプリケーションの疎通を確認するハンドラを返す。
func (s *Server) handleReadyz() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := httpclient.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
		if err := s.upstream.GetJSON(ctx, s.cfg.UpstreamHealthPath, nil); err != nil {
			log.Printf("[Ready] 上流のヘルスチェックに失敗: url=%s, error=%v", s.cfg.UpstreamURL, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "上流サービスに接続できません"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// handleProxy はリクエストを上流アプリケーションへ転送するハンドラを返す。
func (s *Server) handleProxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		target := strings.TrimSuffix(s.cfg.UpstreamURL, "/") + c.Request.URL.EscapedPath()
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, target)
	}
}

// doProxy はリクエストを上流へ転送し、レスポンスをそのまま返す共通処理。
// Cookieを含むリクエストヘッダーとリクエストIDを転送する。
func (s *Server) doProxy(c *gin.Context, url string) {
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "プロキシリクエストの作成に失敗しました"})
		return
	}
	req.ContentLength = c.Request.ContentLength

	req.Header = c.Request.Header.Clone()
	removeHopHeaders(req.Header)
	req.Header.Set(middleware.HeaderKeyRequestID, middleware.GetRequestID(c))
	req.Header.Set("X-Forwarded-Host", c.Request.Host)
	req.Header.Set("X-Forwarded-Proto", forwardedProto(c.Request))
	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		req.Header.Set("X-Forwarded-For", appendForwardedFor(c.Request.Header.Values("X-Forwarded-For"), ip))
	}

	resp, err := s.proxyClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "上流サービスとの通信に失敗しました"})
		log.Printf("[Proxy] プロキシエラー: url=%s, request_id=%s, error=%v", url, middleware.GetRequestID(c), err)
		return
	}
	defer resp.Body.Close()

	header := c.Writer.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	removeHopHeaders(header)
	header.Set(middleware.HeaderKeyRequestID, middleware.GetRequestID(c))

	c.Status(resp.StatusCode)
	c.Writer.WriteHeaderNow()
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("[Proxy] レスポンスの転送に失敗: url=%s, error=%v", url, err)
	}
}

// removeHopHeaders はホップバイホップヘッダーを削除する。
func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}

// appendForwardedFor は既存のX-Forwarded-Forの末尾に接続元IPを追加した値を返す。
func appendForwardedFor(prior []string, ip string) string {
	if len(prior) == 0 {
		return ip
	}
	return strings.Join(prior, ", ") + ", " + ip
}

// forwardedProto はゲートウェイが受けた接続のスキームを返す。
// クライアントが送るX-Forwarded-Protoは検証できないため参照しない。
func forwardedProto(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
