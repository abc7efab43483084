package controller

import (
	"errors"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// DayContent godoc
// @Summary 某模态某课程日的练习内容
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   modality path string true "reading / listening / grammar"
// @Param   dayCode path string true "课程日编码，如 day1"
// @Success 200 {object} util.Response{data=model.DayContent}
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content/{modality}/{dayCode} [get]
func (c *ContentController) DayContent(ctx *gin.Context) {
	modality := model.Modality(ctx.Param("modality"))
	content, err := c.ContentService.DayContent(ctx.Request.Context(), modality, ctx.Param("dayCode"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidModality):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, content)
}

// DayCodes godoc
// @Summary 某模态已有内容的课程日列表
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   modality path string true "reading / listening / grammar"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/content/{modality} [get]
func (c *ContentController) DayCodes(ctx *gin.Context) {
	modality := model.Modality(ctx.Param("modality"))
	codes, err := c.ContentService.DayCodes(modality)
	if err != nil {
		if errors.Is(err, util.ErrInvalidModality) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, codes)
}

// ImportContentRequest 内容导入请求
// swagger:model ImportContentRequest
type ImportContentRequest struct {
	Modality string              `json:"modality" binding:"required,oneof=reading listening grammar"`
	DayCode  string              `json:"dayCode" binding:"required"`
	Title    string              `json:"title"`
	Items    []model.ContentItem `json:"items" binding:"required,min=1"`
}

// Import godoc
// @Summary 导入或更新一天的练习内容
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ImportContentRequest true "内容"
// @Success 201 {object} util.Response{data=model.DayContent}
// @Router /api/content [post]
func (c *ContentController) Import(ctx *gin.Context) {
	var req ImportContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	content := &model.DayContent{
		Modality: model.Modality(req.Modality),
		DayCode:  req.DayCode,
		Title:    req.Title,
		Items:    req.Items,
	}
	if err := c.ContentService.Import(ctx.Request.Context(), content); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, content)
}
