package configwatcher

import (
	"path/filepath"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type ConfigReloader func(cfg *config.Config)

// WatchConfig 监听配置文件变更并回调。写事件做 1s 防抖；
// 编辑器原子替换（rename+create）后需要重新挂监听。
// 热更新失败只告警，不影响运行中的服务。
func WatchConfig(configPath string, reloader ConfigReloader) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log.Error("创建配置监听器失败，热更新不可用", zap.Error(err))
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		logger.Log.Error("解析配置路径失败，热更新不可用", zap.String("path", configPath), zap.Error(err))
		return
	}

	if err := watcher.Add(absPath); err != nil {
		logger.Log.Error("监听配置文件失败，热更新不可用", zap.String("path", absPath), zap.Error(err))
		return
	}

	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Rename != 0 {
				// 原文件被替换，等新文件落盘后补回监听
				time.Sleep(100 * time.Millisecond)
				if err := watcher.Add(absPath); err != nil {
					logger.Log.Error("配置文件替换后重新监听失败", zap.Error(err))
					return
				}
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(1 * time.Second)
		case <-timer.C:
			newCfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("配置热更新加载失败，沿用旧配置", zap.Error(err))
				continue
			}
			reloader(newCfg)
			logger.Log.Info("配置热更新完成", zap.String("path", absPath))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("配置监听异常", zap.Error(err))
		}
	}
}
