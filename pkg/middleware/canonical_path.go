package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// CanonicalizePath は重複したスラッシュや "." ".." セグメントを取り除いたパスを返す。
// 末尾のスラッシュは保持する。
func CanonicalizePath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// CanonicalPath はリクエストURLのパスを正規化するGinミドルウェアを返す。
// 後続のゲート判定と上流への転送が同じパスを見るようにするため、
// c.Request.URL 自体を書き換える。正規化済みのパスは変更しない。
func CanonicalPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.Request.URL
		if cleaned := CanonicalizePath(u.Path); cleaned != u.Path {
			u.Path = cleaned
			u.RawPath = ""
		}
		c.Next()
	}
}
