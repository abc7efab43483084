package service

import (
	"testing"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/pkg/database"
	"lingua_learn_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db    *gorm.DB
	rules config.GamificationConfig
	loc   *time.Location

	users      *repository.UserRepository
	streakRepo *repository.StreakRepository
	xpRepo     *repository.XPRepository
	badgeRepo  *repository.BadgeRepository

	xp        *XPService
	streak    *StreakService
	badge     *BadgeService
	skill     *SkillMasteryService
	dashboard *DashboardService
	sessions  *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	rules := config.DefaultGamification()
	loc := time.UTC

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	xpRepo := repository.NewXPRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	skillRepo := repository.NewSkillRepository(db)

	xp := NewXPService(xpRepo, rules, loc)
	streak := NewStreakService(streakRepo, sessionRepo, xpRepo, loc)
	badge := NewBadgeService(badgeRepo, sessionRepo, analyticsRepo, xp, rules.Badge, loc)
	skill := NewSkillMasteryService(skillRepo, answerRepo, sessionRepo)
	dashboard := NewDashboardService(analyticsRepo, sessionRepo, answerRepo, xpRepo, streakRepo, badgeRepo, xp, rules, nil, loc)
	sessions := NewSessionService(sessionRepo, answerRepo, analyticsRepo, xp, streak, badge, skill, dashboard, loc)

	return &testEnv{
		db:         db,
		rules:      rules,
		loc:        loc,
		users:      userRepo,
		streakRepo: streakRepo,
		xpRepo:     xpRepo,
		badgeRepo:  badgeRepo,
		xp:         xp,
		streak:     streak,
		badge:      badge,
		skill:      skill,
		dashboard:  dashboard,
		sessions:   sessions,
	}
}

func (e *testEnv) createUser(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{Email: "learner@example.com", Password: "hashed", Name: "Learner"}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) startSession(t *testing.T, userID uint, modality model.Modality, dayCode string) *model.Session {
	t.Helper()
	session, err := e.sessions.Start(userID, modality, dayCode)
	require.NoError(t, err)
	return session
}
