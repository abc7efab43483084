package controller

import (
	"errors"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	SkillService *service.SkillMasteryService
}

func NewMasteryController(skillService *service.SkillMasteryService) *MasteryController {
	return &MasteryController{SkillService: skillService}
}

// Overview godoc
// @Summary 全模态技能掌握度总览
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/mastery/overview [get]
func (c *MasteryController) Overview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	overview, err := c.SkillService.Overview(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// ByModality godoc
// @Summary 单模态技能进度
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Param   modality path string true "reading / listening / grammar"
// @Success 200 {object} util.Response{data=service.SkillProgressResponse}
// @Failure 400 {object} util.Response "模态非法"
// @Router /api/mastery/{modality} [get]
func (c *MasteryController) ByModality(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	modality := model.Modality(ctx.Param("modality"))
	if !modality.Valid() {
		util.BadRequest(ctx, util.ErrInvalidModality.Error())
		return
	}

	resp, err := c.SkillService.ModalityProgress(claims.UserID, modality)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// BySession godoc
// @Summary 单次会话的技能细分
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Success 200 {object} util.Response{data=service.SessionMasteryResponse}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/mastery/sessions/{id} [get]
func (c *MasteryController) BySession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.SkillService.SessionMastery(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, resp)
}

// ByDay godoc
// @Summary 某模态某课程日的技能表现
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Param   modality path string true "reading / listening / grammar"
// @Param   dayCode path string true "课程日编码，如 day1"
// @Success 200 {object} util.Response{data=service.SkillProgressResponse}
// @Failure 400 {object} util.Response "模态非法"
// @Router /api/mastery/{modality}/days/{dayCode} [get]
func (c *MasteryController) ByDay(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	modality := model.Modality(ctx.Param("modality"))
	if !modality.Valid() {
		util.BadRequest(ctx, util.ErrInvalidModality.Error())
		return
	}

	resp, err := c.SkillService.CompetenciesByDay(claims.UserID, modality, ctx.Param("dayCode"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}
