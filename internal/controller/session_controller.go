package controller

import (
	"errors"
	"strconv"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// StartSessionRequest 开始会话请求
// swagger:model StartSessionRequest
type StartSessionRequest struct {
	Modality string `json:"modality" binding:"required,oneof=reading listening grammar"`
	DayCode  string `json:"dayCode" binding:"required"`
}

// Start godoc
// @Summary 开始一次练习会话
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body StartSessionRequest true "会话信息"
// @Success 201 {object} util.Response{data=model.Session}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/sessions [post]
func (c *SessionController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.Start(claims.UserID, model.Modality(req.Modality), req.DayCode)
	if err != nil {
		if errors.Is(err, util.ErrInvalidModality) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, session)
}

// Submit godoc
// @Summary 提交会话作答
// @Description 标记会话完成并结算经验值、连击、徽章与技能掌握度
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Param   body body service.SubmitSessionRequest true "作答明细"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "分数与作答不一致"
// @Router /api/sessions/{id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.Submit(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrScoreMismatch):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if len(result.Warnings) > 0 {
		util.DegradedSuccess(ctx, result, result.Warnings)
		return
	}
	util.Success(ctx, result)
}

// Get godoc
// @Summary 查询单个会话及作答明细
// @Tags 会话
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Success 200 {object} util.Response{data=service.SessionDetail}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.SessionService.Detail(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// List godoc
// @Summary 会话历史分页列表
// @Tags 会话
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "每页数量" default(20)
// @Param   offset query int false "偏移量" default(0)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/sessions [get]
func (c *SessionController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	sessions, total, err := c.SessionService.List(claims.UserID, limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:   sessions,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
