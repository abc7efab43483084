package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 题库内容基本只读，缓存期可以放宽
const contentCacheTTL = 10 * time.Minute

type ContentService struct {
	ContentRepo *repository.ContentRepository
	Redis       *redis.Client
}

func NewContentService(contentRepo *repository.ContentRepository, rdb *redis.Client) *ContentService {
	return &ContentService{ContentRepo: contentRepo, Redis: rdb}
}

func contentCacheKey(modality model.Modality, dayCode string) string {
	return fmt.Sprintf("lingua:content:%s:%s", modality, dayCode)
}

// DayContent 某模态某课程日的题目集，redis 缓存兜底回源数据库
func (s *ContentService) DayContent(ctx context.Context, modality model.Modality, dayCode string) (*model.DayContent, error) {
	if !modality.Valid() {
		return nil, util.ErrInvalidModality
	}

	key := contentCacheKey(modality, dayCode)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var content model.DayContent
			if json.Unmarshal([]byte(cached), &content) == nil {
				return &content, nil
			}
		}
	}

	content, err := s.ContentRepo.FindByModalityAndDay(modality, dayCode)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(content); err == nil {
			if err := s.Redis.Set(ctx, key, payload, contentCacheTTL).Err(); err != nil {
				logger.Log.Warn("content cache write failed", zap.Error(err))
			}
		}
	}
	return content, nil
}

func (s *ContentService) DayCodes(modality model.Modality) ([]string, error) {
	if !modality.Valid() {
		return nil, util.ErrInvalidModality
	}
	return s.ContentRepo.ListDayCodes(modality)
}

// Import 导入或更新一天的内容并清除对应缓存
func (s *ContentService) Import(ctx context.Context, content *model.DayContent) error {
	if !content.Modality.Valid() {
		return util.ErrInvalidModality
	}
	if err := s.ContentRepo.Upsert(content); err != nil {
		return err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, contentCacheKey(content.Modality, content.DayCode)).Err(); err != nil {
			logger.Log.Warn("content cache invalidate failed", zap.Error(err))
		}
	}
	return nil
}
