package service

import (
	"math"
	"sort"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
)

type SkillMasteryService struct {
	SkillRepo   *repository.SkillRepository
	AnswerRepo  *repository.AnswerRepository
	SessionRepo *repository.SessionRepository
}

func NewSkillMasteryService(
	skillRepo *repository.SkillRepository,
	answerRepo *repository.AnswerRepository,
	sessionRepo *repository.SessionRepository,
) *SkillMasteryService {
	return &SkillMasteryService{
		SkillRepo:   skillRepo,
		AnswerRepo:  answerRepo,
		SessionRepo: sessionRepo,
	}
}

// BuildSessionSkills 把一次会话的带标签作答按技能归组，纯函数
func BuildSessionSkills(sessionID string, answers []model.Answer) []model.SessionSkill {
	type tally struct{ correct, total int }
	stats := make(map[string]*tally)
	for _, a := range answers {
		if a.Skill == "" {
			continue
		}
		t, ok := stats[a.Skill]
		if !ok {
			t = &tally{}
			stats[a.Skill] = t
		}
		t.total++
		if a.IsCorrect {
			t.correct++
		}
	}

	skills := make([]model.SessionSkill, 0, len(stats))
	for name, t := range stats {
		pct := model.MasteryPct(t.correct, t.total)
		skills = append(skills, model.SessionSkill{
			SessionID:    sessionID,
			Skill:        name,
			Correct:      t.correct,
			Total:        t.total,
			MasteryPct:   pct,
			MasteryLevel: model.MasteryLevelFor(pct),
		})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Skill < skills[j].Skill })
	return skills
}

// RecordSessionSkills 落库本次会话的技能明细
func (s *SkillMasteryService) RecordSessionSkills(sessionID string, answers []model.Answer) ([]model.SessionSkill, error) {
	skills := BuildSessionSkills(sessionID, answers)
	if err := s.SkillRepo.SaveSessionSkills(skills); err != nil {
		return nil, err
	}
	return skills, nil
}

// RecomputeMastery 从该模态全部历史作答重算累计掌握度并整行替换。
// 全量重算避免增量累加在重试提交时重复计数。
func (s *SkillMasteryService) RecomputeMastery(userID uint, modality model.Modality, now time.Time) error {
	sessionIDs, err := s.SessionRepo.SessionIDsByModality(userID, modality)
	if err != nil {
		return err
	}
	answers, err := s.AnswerRepo.SkillTaggedBySessions(sessionIDs)
	if err != nil {
		return err
	}

	type tally struct{ correct, total int }
	stats := make(map[string]*tally)
	for _, a := range answers {
		t, ok := stats[a.Skill]
		if !ok {
			t = &tally{}
			stats[a.Skill] = t
		}
		t.total++
		if a.IsCorrect {
			t.correct++
		}
	}

	records := make([]model.UserSkillMastery, 0, len(stats))
	for name, t := range stats {
		records = append(records, model.UserSkillMastery{
			UserID:          userID,
			Modality:        modality,
			Skill:           name,
			TotalAttempts:   t.total,
			CorrectAttempts: t.correct,
			MasteryPct:      model.MasteryPct(t.correct, t.total),
			LastUpdated:     now,
		})
	}
	return s.SkillRepo.UpsertMastery(records)
}

type SessionMasteryResponse struct {
	SessionID     string               `json:"sessionId"`
	Modality      model.Modality       `json:"modality"`
	DayCode       string               `json:"dayCode"`
	OverallScore  int                  `json:"overallScorePct"`
	DurationSec   int                  `json:"durationSec"`
	Skills        []model.SessionSkill `json:"skills"`
	MasteryLevels map[string]int       `json:"masteryLevels"`
}

// SessionMastery 单次会话的技能细分
func (s *SkillMasteryService) SessionMastery(sessionID string) (*SessionMasteryResponse, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	skills, err := s.SkillRepo.SessionSkills(sessionID)
	if err != nil {
		return nil, err
	}

	levels := map[string]int{"beginner": 0, "developing": 0, "proficient": 0, "advanced": 0}
	for _, sk := range skills {
		levels[string(sk.MasteryLevel)]++
	}
	return &SessionMasteryResponse{
		SessionID:     session.ID,
		Modality:      session.Modality,
		DayCode:       session.DayCode,
		OverallScore:  session.ScorePct,
		DurationSec:   session.DurationSec,
		Skills:        skills,
		MasteryLevels: levels,
	}, nil
}

type SkillDetail struct {
	Skill             string             `json:"skill"`
	SessionsPracticed int                `json:"sessionsPracticed"`
	TotalQuestions    int                `json:"totalQuestions"`
	CorrectAnswers    int                `json:"correctAnswers"`
	OverallMasteryPct int                `json:"overallMasteryPct"`
	MasteryLevel      model.MasteryLevel `json:"masteryLevel"`
	AvgTimePerItem    float64            `json:"avgTimePerQuestion,omitempty"`
}

type SkillProgressResponse struct {
	Modality model.Modality `json:"modality"`
	Skills   []SkillDetail  `json:"skills"`
}

// ModalityProgress 某模态的累计技能进度
func (s *SkillMasteryService) ModalityProgress(userID uint, modality model.Modality) (SkillProgressResponse, error) {
	records, err := s.SkillRepo.MasteryByUserAndModality(userID, modality)
	if err != nil {
		return SkillProgressResponse{}, err
	}
	sessionIDs, err := s.SessionRepo.SessionIDsByModality(userID, modality)
	if err != nil {
		return SkillProgressResponse{}, err
	}

	resp := SkillProgressResponse{Modality: modality, Skills: []SkillDetail{}}
	for _, rec := range records {
		practiced, err := s.SkillRepo.CountSessionsWithSkill(sessionIDs, rec.Skill)
		if err != nil {
			return SkillProgressResponse{}, err
		}
		resp.Skills = append(resp.Skills, SkillDetail{
			Skill:             rec.Skill,
			SessionsPracticed: practiced,
			TotalQuestions:    rec.TotalAttempts,
			CorrectAnswers:    rec.CorrectAttempts,
			OverallMasteryPct: rec.MasteryPct,
			MasteryLevel:      model.MasteryLevelFor(rec.MasteryPct),
		})
	}
	return resp, nil
}

type ModalityMastery struct {
	OverallMasteryPct int            `json:"overallMasteryPct"`
	Skills            map[string]int `json:"skills"`
}

// Overview 全模态掌握度总览，模态整体 = 各技能百分比的四舍五入均值
func (s *SkillMasteryService) Overview(userID uint) (map[string]ModalityMastery, error) {
	records, err := s.SkillRepo.MasteryByUser(userID)
	if err != nil {
		return nil, err
	}

	overview := make(map[string]ModalityMastery, len(model.AllModalities))
	for _, m := range model.AllModalities {
		overview[string(m)] = ModalityMastery{Skills: map[string]int{}}
	}
	for _, rec := range records {
		mm := overview[string(rec.Modality)]
		mm.Skills[rec.Skill] = rec.MasteryPct
		overview[string(rec.Modality)] = mm
	}
	for key, mm := range overview {
		if len(mm.Skills) == 0 {
			continue
		}
		sum := 0
		for _, pct := range mm.Skills {
			sum += pct
		}
		mm.OverallMasteryPct = int(math.Round(float64(sum) / float64(len(mm.Skills))))
		overview[key] = mm
	}
	return overview, nil
}

// CompetenciesByDay 某模态某课程日的技能表现，含平均每题用时
func (s *SkillMasteryService) CompetenciesByDay(userID uint, modality model.Modality, dayCode string) (SkillProgressResponse, error) {
	resp := SkillProgressResponse{Modality: modality, Skills: []SkillDetail{}}

	sessionIDs, err := s.SessionRepo.SessionIDsByModalityAndDay(userID, modality, dayCode)
	if err != nil {
		return resp, err
	}
	if len(sessionIDs) == 0 {
		return resp, nil
	}
	answers, err := s.AnswerRepo.SkillTaggedBySessions(sessionIDs)
	if err != nil {
		return resp, err
	}

	type tally struct {
		correct, total, timeSec int
		sessions                map[string]bool
	}
	stats := make(map[string]*tally)
	for _, a := range answers {
		t, ok := stats[a.Skill]
		if !ok {
			t = &tally{sessions: make(map[string]bool)}
			stats[a.Skill] = t
		}
		t.total++
		t.timeSec += a.TimeSpentSec
		t.sessions[a.SessionID] = true
		if a.IsCorrect {
			t.correct++
		}
	}

	for name, t := range stats {
		pct := model.MasteryPct(t.correct, t.total)
		avg := 0.0
		if t.total > 0 {
			avg = math.Round(float64(t.timeSec)/float64(t.total)*10) / 10
		}
		resp.Skills = append(resp.Skills, SkillDetail{
			Skill:             name,
			SessionsPracticed: len(t.sessions),
			TotalQuestions:    t.total,
			CorrectAnswers:    t.correct,
			OverallMasteryPct: pct,
			MasteryLevel:      model.MasteryLevelFor(pct),
			AvgTimePerItem:    avg,
		})
	}
	sort.Slice(resp.Skills, func(i, j int) bool { return resp.Skills[i].Skill < resp.Skills[j].Skill })
	return resp, nil
}
