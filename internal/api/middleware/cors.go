package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 仅放行配置中的来源；列表包含 "*" 时放行全部来源（回显 Origin 以支持凭证）
func CORS(allowed []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", HeaderUserEmail, HeaderUserName},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origins := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			origins = nil
			break
		}
		origins = append(origins, strings.TrimRight(o, "/"))
	}
	if cfg.AllowOriginFunc == nil {
		if len(origins) == 0 {
			return func(c *gin.Context) { c.Next() }
		}
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
