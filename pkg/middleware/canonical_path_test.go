package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestCanonicalizePath はパスの正規化を検証する。
func TestCanonicalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "/admin/users", want: "/admin/users"},
		{in: "//admin/users", want: "/admin/users"},
		{in: "/./admin/users", want: "/admin/users"},
		{in: "/public/../admin/users", want: "/admin/users"},
		{in: "/../../admin", want: "/admin"},
		{in: "/admin//users/", want: "/admin/users/"},
		{in: "/admin/", want: "/admin/"},
		{in: "/", want: "/"},
		{in: "", want: "/"},
		{in: "admin", want: "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := CanonicalizePath(tt.in); got != tt.want {
				t.Errorf("CanonicalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCanonicalPath はCanonicalPathミドルウェアを検証する。
func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	t.Run("ドットセグメントを含むパスがゲート判定前に正規化されること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := gin.New()
		router.Use(CanonicalPath())
		router.Use(SessionGate(DefaultGateConfig()))
		router.NoRoute(func(c *gin.Context) {
			called = true
			c.Status(http.StatusOK)
		})

		for _, target := range []string{"//admin/users", "/./admin/users", "/public/../admin/users"} {
			called = false
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target+"?x=1", nil))

			if w.Code != http.StatusTemporaryRedirect {
				t.Errorf("%s: ステータスコード = %d, want %d", target, w.Code, http.StatusTemporaryRedirect)
			}
			if got := w.Header().Get("Location"); got != "/auth?x=1" {
				t.Errorf("%s: Location = %q, want %q", target, got, "/auth?x=1")
			}
			if called {
				t.Errorf("%s: 後続のハンドラが呼ばれるべきではない", target)
			}
		}
	})

	t.Run("正規化済みのパスはエスケープ表現を保持すること", func(t *testing.T) {
		t.Parallel()

		var gotEscaped string
		router := gin.New()
		router.Use(CanonicalPath())
		router.NoRoute(func(c *gin.Context) {
			gotEscaped = c.Request.URL.EscapedPath()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/a%2Fb", nil))

		if gotEscaped != "/files/a%2Fb" {
			t.Errorf("EscapedPath() = %q, want %q", gotEscaped, "/files/a%2Fb")
		}
	})
}
