package controller

import (
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *service.DashboardService
}

func NewDashboardController(dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// Summary godoc
// @Summary 仪表盘摘要
// @Description 连击、经验值、每日目标、周分钟数、正确率趋势、完成热力图与最近成绩
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Param   window query string false "时间窗口，如 7d / 30d" default(7d)
// @Success 200 {object} util.Response{data=service.DashboardSummary}
// @Router /api/dashboard [get]
func (c *DashboardController) Summary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.Dashboard.Summary(ctx.Request.Context(), claims.UserID, ctx.DefaultQuery("window", "7d"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// Detail godoc
// @Summary 单模态仪表盘明细
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Param   modality path string true "reading / listening / grammar"
// @Success 200 {object} util.Response{data=service.ModalityDetail}
// @Failure 400 {object} util.Response "模态非法"
// @Router /api/dashboard/{modality} [get]
func (c *DashboardController) Detail(ctx *gin.Context) {
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

	detail, err := c.Dashboard.Detail(claims.UserID, modality)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
