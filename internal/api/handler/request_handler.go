package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/service"
	"github.com/d60-Lab/study-partner/pkg/response"
)

type createRequestRequest struct {
	PartnerID string `json:"partnerId" binding:"required"`
	Message   string `json:"message"`
	// 仅在 insecure 模式下使用
	SenderEmail string `json:"senderEmail" binding:"omitempty,email"`
	SenderName  string `json:"senderName"`
}

// CreateRequest 发送学伴请求
// @Summary 发送学伴请求
// @Tags 请求
// @Accept json
// @Produce json
// @Param request body createRequestRequest true "请求信息"
// @Success 201 {object} model.Request
// @Failure 400 {object} response.ErrorBody "参数错误或重复请求"
// @Failure 401 {object} response.ErrorBody
// @Router /requests [post]
func (h *Handler) CreateRequest(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	caller := h.caller(c, req.SenderEmail, req.SenderName)
	if caller.IsZero() {
		response.BadRequest(c, "senderEmail is required")
		return
	}
	created, err := h.matching.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		SenderEmail: caller.Email,
		SenderName:  caller.Name,
		PartnerID:   req.PartnerID,
		Message:     req.Message,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, created)
}

// ListUserRequests 查询某用户发出的请求
// @Summary 查询用户请求（含学伴详情）
// @Tags 请求
// @Produce json
// @Param email path string true "发送者邮箱"
// @Success 200 {array} model.RequestWithPartner
// @Failure 403 {object} response.ErrorBody
// @Router /requests/{email} [get]
func (h *Handler) ListUserRequests(c *gin.Context) {
	list, err := h.matching.ListRequestsForUser(c.Request.Context(), c.Param("email"), h.caller(c, "", ""))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// ListAllRequests 调试用，列出全部请求
// @Summary 列出全部请求（调试）
// @Tags 请求
// @Produce json
// @Success 200 {array} model.Request
// @Router /requests/all [get]
func (h *Handler) ListAllRequests(c *gin.Context) {
	list, err := h.matching.ListAllRequests(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// UpdateRequest 更新请求
// @Summary 更新请求状态或留言
// @Tags 请求
// @Accept json
// @Produce json
// @Param id path string true "请求ID"
// @Param request body model.RequestPatch true "更新内容"
// @Success 200 {object} model.Request
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /requests/{id} [put]
func (h *Handler) UpdateRequest(c *gin.Context) {
	var patch model.RequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindError(c, err)
		return
	}
	updated, err := h.matching.UpdateRequest(c.Request.Context(), c.Param("id"), h.caller(c, "", ""), patch)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, updated)
}

// DeleteRequest 撤回请求
// @Summary 撤回请求
// @Tags 请求
// @Produce json
// @Param id path string true "请求ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /requests/{id} [delete]
func (h *Handler) DeleteRequest(c *gin.Context) {
	if err := h.matching.DeleteRequest(c.Request.Context(), c.Param("id"), h.caller(c, "", "")); err != nil {
		fail(c, err)
		return
	}
	response.Message(c, "Request deleted successfully")
}

// Reconcile 按请求集合重算学伴计数
// @Summary 修复 partnerCount
// @Tags 管理
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 403 {object} response.ErrorBody
// @Router /admin/reconcile [post]
func (h *Handler) Reconcile(c *gin.Context) {
	fixed, err := h.matching.ReconcileCounters(c.Request.Context(), h.caller(c, "", ""))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"corrected": fixed})
}
