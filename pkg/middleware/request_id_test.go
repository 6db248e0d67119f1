package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TestRequestID はRequestIDミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("ヘッダーが無い場合UUIDが生成されること", func(t *testing.T) {
		t.Parallel()

		var captured string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			captured = GetRequestID(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("生成されたリクエストIDがUUIDではない: %q", captured)
		}
		if got := w.Header().Get(HeaderKeyRequestID); got != captured {
			t.Errorf("X-Request-ID = %q, want %q", got, captured)
		}
	})

	t.Run("受け取ったX-Request-IDを引き継ぐこと", func(t *testing.T) {
		t.Parallel()

		var captured string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			captured = GetRequestID(c)
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderKeyRequestID, "upstream-req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if captured != "upstream-req-1" {
			t.Errorf("GetRequestID() = %q, want %q", captured, "upstream-req-1")
		}
		if got := w.Header().Get(HeaderKeyRequestID); got != "upstream-req-1" {
			t.Errorf("X-Request-ID = %q, want %q", got, "upstream-req-1")
		}
	})

	t.Run("リクエストごとに異なるIDが生成されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		ids := make(map[string]struct{})
		for range 3 {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			ids[w.Header().Get(HeaderKeyRequestID)] = struct{}{}
		}
		if len(ids) != 3 {
			t.Errorf("ユニークなID数 = %d, want 3", len(ids))
		}
	})

	t.Run("ゲートのリダイレクト応答にもリクエストIDが付与されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID())
		router.Use(SessionGate(DefaultGateConfig()))
		router.GET("/admin", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		if w.Code != http.StatusTemporaryRedirect {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusTemporaryRedirect)
		}
		if w.Header().Get(HeaderKeyRequestID) == "" {
			t.Error("X-Request-IDが設定されていない")
		}
	})
}

// TestGetRequestID はGetRequestID関数を検証する。
func TestGetRequestID(t *testing.T) {
	t.Parallel()

	t.Run("設定されていない場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if got := GetRequestID(c); got != "" {
			t.Errorf("GetRequestID() = %q, want empty string", got)
		}
	})

	t.Run("文字列以外の型の場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("request_id", 12345)
		if got := GetRequestID(c); got != "" {
			t.Errorf("GetRequestID() = %q, want empty string", got)
		}
	})
}
