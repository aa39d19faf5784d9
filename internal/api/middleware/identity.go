package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/pkg/logger"
	"github.com/d60-Lab/study-partner/pkg/response"
)

// 开发模式下的身份请求头
const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

const identityKey = "caller_identity"

// Identity 解析调用方身份。
// 携带 Bearer token 时必须校验通过；insecure 为 true 且没有 token 时信任 X-User-* 请求头。
func Identity(verifier auth.Verifier, insecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := auth.BearerToken(c.GetHeader("Authorization")); token != "" {
			if verifier == nil {
				response.Unauthorized(c, "token verification is not configured")
				return
			}
			id, err := verifier.Verify(c.Request.Context(), token)
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err))
				response.Unauthorized(c, "invalid or expired token")
				return
			}
			SetIdentity(c, id)
		} else if insecure {
			if email := strings.TrimSpace(c.GetHeader(HeaderUserEmail)); email != "" {
				SetIdentity(c, auth.Identity{Email: email, Name: c.GetHeader(HeaderUserName)})
			}
		}
		c.Next()
	}
}

// RequireIdentity 没有可信身份时返回 401；insecure 模式下身份可能来自请求体，交给 handler 判断
func RequireIdentity(insecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok && !insecure {
			response.Unauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
}

func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok && !id.IsZero()
}
