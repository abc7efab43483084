package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrSessionNotFound    = errors.New("session not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrInvalidModality    = errors.New("invalid modality")

	// 提交分数与按作答重算的分数不一致，拒绝于任何写入之前
	ErrScoreMismatch = errors.New("submitted score does not match recomputed accuracy")
)

// PipelineError 会话已落库后下游步骤（连击/XP/徽章/掌握度）失败。
// 不回滚已提交的步骤，只记录并以降级成功返回给调用方。
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline step %s failed: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
