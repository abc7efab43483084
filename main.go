// @title LinguaLearn 进度服务 API
// @version 1.0
// @description 语言学习平台的进度与游戏化后端：会话提交、经验值、连击、徽章与技能掌握度。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"lingua_learn_backend/internal/app"
	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/pkg/configwatcher"
	"lingua_learn_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.Log.Info("配置已热更新",
			zap.String("mode", newCfg.Server.Mode),
			zap.Int("rate_limit", newCfg.RateLimit.MaxRequests))
	})
	go configwatcher.WatchConfig("configs/config.yaml", application.OnConfigReload)

	application.Run()
}
