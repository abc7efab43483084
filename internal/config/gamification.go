package config

import "fmt"

// GamificationConfig 进度核心的全部规则表。
// 一次加载后不可变，按值注入各引擎，避免可变的包级全局状态。
type GamificationConfig struct {
	XP        XPRules        `mapstructure:"xp"`
	Level     LevelRules     `mapstructure:"level"`
	Badge     BadgeRules     `mapstructure:"badge"`
	Milestone MilestoneRules `mapstructure:"milestone"`

	// 各模态的基准时长（秒），用于计算速度奖励
	ExpectedDurationSec map[string]int `mapstructure:"expected_duration_sec"`
}

type XPRules struct {
	BaseSessionXP          int     `mapstructure:"base_session_xp"`
	AccuracyBonusThreshold float64 `mapstructure:"accuracy_bonus_threshold"`
	AccuracyBonusXP        int     `mapstructure:"accuracy_bonus_xp"`
	PerfectScoreBonus      int     `mapstructure:"perfect_score_bonus"`
	FirstSessionBonus      int     `mapstructure:"first_session_bonus"`
	SpeedBonusMax          int     `mapstructure:"speed_bonus_max"`
	StreakBonusPerDay      int     `mapstructure:"streak_bonus_per_day"`
	StreakBonusMax         int     `mapstructure:"streak_bonus_max"`
	PerfectDayBonus        int     `mapstructure:"perfect_day_bonus"`
	DailyXPGoal            int     `mapstructure:"daily_xp_goal"`
	DailySessionGoal       int     `mapstructure:"daily_session_goal"`
}

type LevelRules struct {
	XPPerLevelBase int     `mapstructure:"xp_per_level_base"`
	XPMultiplier   float64 `mapstructure:"xp_multiplier"`
}

type BadgeRules struct {
	BonusXP          int   `mapstructure:"bonus_xp"`
	StreakThresholds []int `mapstructure:"streak_thresholds"`
	ConsistencyRuns  int   `mapstructure:"consistency_runs"`
	CenturionTotal   int   `mapstructure:"centurion_total"`
}

type MilestoneRules struct {
	XP     []int `mapstructure:"xp"`
	Streak []int `mapstructure:"streak"`

	// 距离连击里程碑少于该天数时优先推荐连击目标
	StreakPreferWithin int `mapstructure:"streak_prefer_within"`
}

func DefaultGamification() GamificationConfig {
	return GamificationConfig{
		XP: XPRules{
			BaseSessionXP:          20,
			AccuracyBonusThreshold: 0.80,
			AccuracyBonusXP:        10,
			PerfectScoreBonus:      25,
			FirstSessionBonus:      15,
			SpeedBonusMax:          10,
			StreakBonusPerDay:      2,
			StreakBonusMax:         30,
			PerfectDayBonus:        50,
			DailyXPGoal:            100,
			DailySessionGoal:       3,
		},
		Level: LevelRules{
			XPPerLevelBase: 100,
			XPMultiplier:   1.5,
		},
		Badge: BadgeRules{
			BonusXP:          50,
			StreakThresholds: []int{3, 7, 30},
			ConsistencyRuns:  3,
			CenturionTotal:   100,
		},
		Milestone: MilestoneRules{
			XP:                 []int{500, 1000, 1500, 2000, 2500, 3000, 5000, 10000},
			Streak:             []int{3, 7, 14, 30, 60, 90},
			StreakPreferWithin: 5,
		},
		ExpectedDurationSec: map[string]int{
			"reading":   600,
			"listening": 480,
			"grammar":   420,
		},
	}
}

func (g GamificationConfig) Validate() error {
	if g.Level.XPMultiplier <= 1.0 {
		return fmt.Errorf("level xp_multiplier must be > 1.0, got %v", g.Level.XPMultiplier)
	}
	if g.Level.XPPerLevelBase <= 0 {
		return fmt.Errorf("level xp_per_level_base must be positive, got %d", g.Level.XPPerLevelBase)
	}
	if g.XP.AccuracyBonusThreshold <= 0 || g.XP.AccuracyBonusThreshold > 1 {
		return fmt.Errorf("xp accuracy_bonus_threshold must be in (0,1], got %v", g.XP.AccuracyBonusThreshold)
	}
	for modality, sec := range g.ExpectedDurationSec {
		if sec <= 0 {
			return fmt.Errorf("expected_duration_sec for %s must be positive, got %d", modality, sec)
		}
	}
	return nil
}
