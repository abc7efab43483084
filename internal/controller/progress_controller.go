package controller

import (
	"time"

	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressController 经验值、等级、连击与每日目标的读接口
type ProgressController struct {
	XPService     *service.XPService
	StreakService *service.StreakService
	BadgeService  *service.BadgeService
	Dashboard     *service.DashboardService
	Loc           *time.Location
}

func NewProgressController(
	xpService *service.XPService,
	streakService *service.StreakService,
	badgeService *service.BadgeService,
	dashboard *service.DashboardService,
	loc *time.Location,
) *ProgressController {
	return &ProgressController{
		XPService:     xpService,
		StreakService: streakService,
		BadgeService:  badgeService,
		Dashboard:     dashboard,
		Loc:           loc,
	}
}

// XP godoc
// @Summary 累计与当日经验值
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/users/me/xp [get]
func (c *ProgressController) XP(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	total, today, err := c.XPService.UserXP(claims.UserID, time.Now().In(c.Loc))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"total": total, "today": today})
}

// DailyXP godoc
// @Summary 当日经验值目标完成度
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DailyXPResponse}
// @Router /api/users/me/xp/daily [get]
func (c *ProgressController) DailyXP(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.XPService.DailyXP(claims.UserID, time.Now().In(c.Loc))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Level godoc
// @Summary 当前等级与升级进度
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.LevelInfo}
// @Router /api/users/me/level [get]
func (c *ProgressController) Level(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.XPService.UserLevel(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// Streak godoc
// @Summary 当前连击状态
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StreakResponse}
// @Router /api/users/me/streak [get]
func (c *ProgressController) Streak(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.StreakService.Status(claims.UserID, time.Now().In(c.Loc))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// StreakCalendar godoc
// @Summary 月度活跃日历
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Param   month query string false "月份 YYYY-MM，默认当月"
// @Success 200 {object} util.Response{data=service.StreakCalendarResponse}
// @Router /api/users/me/streak-calendar [get]
func (c *ProgressController) StreakCalendar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	now := time.Now().In(c.Loc)
	year, month := now.Year(), now.Month()
	if raw := ctx.Query("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, c.Loc)
		if err != nil {
			util.BadRequest(ctx, "month 格式应为 YYYY-MM")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	resp, err := c.StreakService.Calendar(claims.UserID, year, month)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// DailyProgress godoc
// @Summary 今日目标完成度
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DailyProgress}
// @Router /api/users/me/daily-progress [get]
func (c *ProgressController) DailyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.Dashboard.Progress(claims.UserID, time.Now().In(c.Loc))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Badges godoc
// @Summary 已获得的徽章列表
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge}
// @Router /api/users/me/badges [get]
func (c *ProgressController) Badges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}
