package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/service"
	"github.com/d60-Lab/study-partner/pkg/response"
)

type createPartnerRequest struct {
	Name             string `json:"name"`
	ProfileImage     string `json:"profileImage"`
	Subject          string `json:"subject" binding:"required"`
	StudyMode        string `json:"studyMode"`
	AvailabilityTime string `json:"availabilityTime"`
	Location         string `json:"location"`
	ExperienceLevel  string `json:"experienceLevel"`
	// Email 联系邮箱；insecure 模式下同时作为创建者身份
	Email string `json:"email" binding:"omitempty,email"`
}

// ListPartners 学伴列表
// @Summary 学伴列表（支持搜索与排序）
// @Tags 学伴
// @Produce json
// @Param search query string false "科目关键字"
// @Param sort query string false "expert 或 rating"
// @Success 200 {array} model.Partner
// @Router /partners [get]
func (h *Handler) ListPartners(c *gin.Context) {
	list, err := h.directory.ListPartners(c.Request.Context(), c.Query("search"), c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// TopRated 高分学伴
// @Summary 高分学伴
// @Tags 学伴
// @Produce json
// @Param limit query int false "数量" default(6)
// @Success 200 {array} model.Partner
// @Router /partners/top-rated [get]
func (h *Handler) TopRated(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultTopRatedLimit)))
	list, err := h.directory.TopRated(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// GetPartner 学伴详情
// @Summary 学伴详情
// @Tags 学伴
// @Produce json
// @Param id path string true "学伴ID"
// @Success 200 {object} model.Partner
// @Failure 404 {object} response.ErrorBody
// @Router /partners/{id} [get]
func (h *Handler) GetPartner(c *gin.Context) {
	p, err := h.directory.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// CreatePartner 创建学伴档案
// @Summary 创建学伴档案
// @Tags 学伴
// @Accept json
// @Produce json
// @Param request body createPartnerRequest true "档案信息"
// @Success 201 {object} model.Partner
// @Failure 400 {object} response.ErrorBody
// @Router /partners [post]
func (h *Handler) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.partners.Create(c.Request.Context(), h.caller(c, req.Email, req.Name), service.CreatePartnerInput{
		Name:             req.Name,
		ProfileImage:     req.ProfileImage,
		Subject:          req.Subject,
		StudyMode:        req.StudyMode,
		AvailabilityTime: req.AvailabilityTime,
		Location:         req.Location,
		ExperienceLevel:  req.ExperienceLevel,
		Email:            req.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, p)
}

// UpdatePartner 更新学伴档案
// @Summary 更新学伴档案（仅创建者）
// @Tags 学伴
// @Accept json
// @Produce json
// @Param id path string true "学伴ID"
// @Param request body model.PartnerPatch true "更新内容"
// @Success 200 {object} model.Partner
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /partners/{id} [put]
func (h *Handler) UpdatePartner(c *gin.Context) {
	var patch model.PartnerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.partners.Update(c.Request.Context(), c.Param("id"), h.caller(c, "", ""), patch)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePartner 删除学伴档案
// @Summary 删除学伴档案（仅创建者）
// @Tags 学伴
// @Produce json
// @Param id path string true "学伴ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /partners/{id} [delete]
func (h *Handler) DeletePartner(c *gin.Context) {
	if err := h.partners.Delete(c.Request.Context(), c.Param("id"), h.caller(c, "", "")); err != nil {
		fail(c, err)
		return
	}
	response.Message(c, "Partner deleted successfully")
}
