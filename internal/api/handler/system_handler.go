package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/study-partner/pkg/response"
)

// Root 服务标识
func (h *Handler) Root(c *gin.Context) {
	response.Message(c, "Study Partner Backend API")
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} response.ErrorBody
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			response.Fail(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "database unreachable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}

// Profile 用户资料，首次访问自动创建
// @Summary 用户资料
// @Tags 用户
// @Produce json
// @Param email path string true "邮箱"
// @Success 200 {object} model.User
// @Router /profile/{email} [get]
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.profiles.GetOrCreate(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}
