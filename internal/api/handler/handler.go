package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/internal/api/middleware"
	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/service"
	"github.com/d60-Lab/study-partner/pkg/logger"
	"github.com/d60-Lab/study-partner/pkg/response"
)

func init() {
	// 校验错误使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Handler HTTP 处理器集合
type Handler struct {
	matching  service.MatchingService
	partners  service.PartnerService
	directory service.DirectoryService
	profiles  service.ProfileService
	// insecureIdentity 为 true 时允许从请求体读取身份
	insecureIdentity bool
	ping             func(ctx context.Context) error
}

func New(
	matching service.MatchingService,
	partners service.PartnerService,
	directory service.DirectoryService,
	profiles service.ProfileService,
	insecureIdentity bool,
	ping func(ctx context.Context) error,
) *Handler {
	return &Handler{
		matching:         matching,
		partners:         partners,
		directory:        directory,
		profiles:         profiles,
		insecureIdentity: insecureIdentity,
		ping:             ping,
	}
}

// caller 优先使用已校验的身份；insecure 模式下退化为请求体中的字段
func (h *Handler) caller(c *gin.Context, bodyEmail, bodyName string) auth.Identity {
	if id, ok := middleware.GetIdentity(c); ok {
		return id
	}
	if h.insecureIdentity {
		return auth.Identity{Email: strings.TrimSpace(bodyEmail), Name: bodyName}
	}
	return auth.Identity{}
}

// fail 服务错误到 HTTP 状态码的映射
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, detail(err, service.ErrValidation))
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Fail(c, http.StatusBadRequest, response.CodeDuplicateRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, detail(err, service.ErrForbidden))
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTimeout):
		logger.Error("store timeout", zap.Error(err), zap.String("path", c.FullPath()))
		response.Fail(c, http.StatusGatewayTimeout, response.CodeTimeout, "store timeout")
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.Error("store unavailable", zap.Error(err), zap.String("path", c.FullPath()))
		response.Fail(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "store unavailable")
	default:
		response.InternalError(c, err)
	}
}

// detail 去掉哨兵错误前缀，只保留具体原因
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

// bindError 将 validator 错误转换为可读信息
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "invalid request body")
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	response.BadRequest(c, strings.Join(msgs, "; "))
}
