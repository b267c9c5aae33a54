package handler

import (
	"strings"

	"github.com/bingooyong/release-tracker/internal/checklist"
	"github.com/bingooyong/release-tracker/internal/repository"
	"github.com/bingooyong/release-tracker/internal/service"
	"github.com/bingooyong/release-tracker/pkg/errors"
	"github.com/bingooyong/release-tracker/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReleaseHandler 发布处理器
type ReleaseHandler struct {
	releaseService service.ReleaseService
	checklist      *checklist.Checklist
	logger         *zap.Logger
}

// NewReleaseHandler 创建发布处理器实例
func NewReleaseHandler(releaseService service.ReleaseService, list *checklist.Checklist, logger *zap.Logger) *ReleaseHandler {
	return &ReleaseHandler{
		releaseService: releaseService,
		checklist:      list,
		logger:         logger,
	}
}

// CreateReleaseRequest 创建发布请求，检查项状态不可由调用方指定
type CreateReleaseRequest struct {
	Name           string  `json:"name"`
	Date           string  `json:"date"`
	AdditionalInfo *string `json:"additional_info"`
}

// UpdateReleaseRequest 部分更新请求，未知字段忽略
type UpdateReleaseRequest struct {
	Name           optionalString `json:"name"`
	Date           optionalString `json:"date"`
	AdditionalInfo optionalString `json:"additional_info"`
}

// ToggleStepRequest 切换检查项请求
type ToggleStepRequest struct {
	StepIndex *int `json:"stepIndex"`
}

// Register 注册发布相关路由
func (h *ReleaseHandler) Register(r gin.IRouter) {
	r.GET("/steps", h.ListSteps)

	releases := r.Group("/releases")
	{
		releases.GET("", h.List)
		releases.POST("", h.Create)
		releases.PATCH("/:id/toggle-step", h.ToggleStep)
		releases.GET("/:id", h.Get)
		releases.PATCH("/:id", h.Update)
		releases.DELETE("/:id", h.Delete)
	}
}

// ListSteps 获取检查项定义
func (h *ReleaseHandler) ListSteps(c *gin.Context) {
	response.Success(c, h.checklist.Steps())
}

// List 获取发布列表，按日期倒序
func (h *ReleaseHandler) List(c *gin.Context) {
	releases, err := h.releaseService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, toReleaseResponses(h.checklist, releases))
}

// Get 获取发布详情
func (h *ReleaseHandler) Get(c *gin.Context) {
	id := parseIDParam(c)
	if id == "" {
		response.BadRequest(c, "Release id is required")
		return
	}

	release, err := h.releaseService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, toReleaseResponse(h.checklist, release))
}

// Create 创建发布
func (h *ReleaseHandler) Create(c *gin.Context) {
	var req CreateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid create release request", zap.Error(err))
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Date) == "" {
		response.BadRequest(c, "Name and date are required")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	release, err := h.releaseService.Create(c.Request.Context(), repository.CreateReleaseInput{
		Name:           name,
		Date:           date,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, toReleaseResponse(h.checklist, release))
}

// Update 部分更新发布
func (h *ReleaseHandler) Update(c *gin.Context) {
	id := parseIDParam(c)
	if id == "" {
		response.BadRequest(c, "Release id is required")
		return
	}

	var req UpdateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid update release request", zap.String("id", id), zap.Error(err))
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	update, apiErr := h.buildUpdate(req)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	release, err := h.releaseService.Update(c.Request.Context(), id, update)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, toReleaseResponse(h.checklist, release))
}

// buildUpdate 校验更新请求，至少需要一个可识别字段
func (h *ReleaseHandler) buildUpdate(req UpdateReleaseRequest) (repository.ReleaseUpdate, *errors.APIError) {
	var update repository.ReleaseUpdate

	if req.Name.Set {
		if req.Name.Value == nil || strings.TrimSpace(*req.Name.Value) == "" {
			return update, errors.New(errors.ErrInvalidParams, "Name must not be empty")
		}
		update.Name = strings.TrimSpace(*req.Name.Value)
		update.NameSet = true
	}

	if req.Date.Set {
		if req.Date.Value == nil {
			return update, errors.New(errors.ErrInvalidParams, "Date must not be null")
		}
		date, err := parseDate(*req.Date.Value)
		if err != nil {
			return update, errors.New(errors.ErrInvalidParams, err.Error())
		}
		update.Date = date
		update.DateSet = true
	}

	if req.AdditionalInfo.Set {
		update.AdditionalInfo = req.AdditionalInfo.Value
		update.AdditionalInfoSet = true
	}

	if update.Empty() {
		return update, errors.New(errors.ErrInvalidParams, "No fields to update")
	}
	return update, nil
}

// ToggleStep 切换检查项完成状态
func (h *ReleaseHandler) ToggleStep(c *gin.Context) {
	id := parseIDParam(c)
	if id == "" {
		response.BadRequest(c, "Release id is required")
		return
	}

	var req ToggleStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid step index")
		return
	}
	if req.StepIndex == nil || !h.checklist.InRange(*req.StepIndex) {
		response.BadRequest(c, "Invalid step index")
		return
	}

	release, err := h.releaseService.ToggleStep(c.Request.Context(), id, *req.StepIndex)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, toReleaseResponse(h.checklist, release))
}

// Delete 删除发布
func (h *ReleaseHandler) Delete(c *gin.Context) {
	id := parseIDParam(c)
	if id == "" {
		response.BadRequest(c, "Release id is required")
		return
	}

	if err := h.releaseService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Message(c, "Release deleted successfully", id)
}
