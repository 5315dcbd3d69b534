package game

import (
	"itvserver/models"

	"go.uber.org/zap"
)

// 起動時に生成される8コホートの性格テーブル。IDと性格は固定で、
// 以降はメンバーリストとスコア・ストリークだけが変化する。
// cohortOrderは挿入順を保持し、同点時のタイブレークに使う
// （Goのmapは反復順が不定なため、順序はここで明示する）。
var cohortOrder = []string{
	"skeptics",
	"believers",
	"analysts",
	"trolls",
	"lurkers",
	"power-users",
	"newbies",
	"veterans",
}

var cohortPersonalities = map[string]models.CohortPersonality{
	"skeptics": {
		Name:            "Skeptics",
		Description:     "Always questioning, rarely trusting",
		SpecialAbility:  "Can detect obvious fake answers",
		ScoreMultiplier: 1.2,
		Bias:            -0.3,
	},
	"believers": {
		Name:            "Believers",
		Description:     "Trusting and optimistic",
		SpecialAbility:  "Bonus points for believing real content",
		ScoreMultiplier: 1.5,
		Bias:            0.3,
	},
	"analysts": {
		Name:            "Analysts",
		Description:     "Methodical and data-driven",
		SpecialAbility:  "Can analyze answer patterns",
		ScoreMultiplier: 1.0,
		Bias:            0.1,
	},
	"trolls": {
		Name:            "Trolls",
		Description:     "Chaotic and unpredictable",
		SpecialAbility:  "Random chance to get bonus points",
		ScoreMultiplier: 2.0,
		Bias:            0.0,
	},
	"lurkers": {
		Name:            "Lurkers",
		Description:     "Observant and patient",
		SpecialAbility:  "Can see what others are selecting",
		ScoreMultiplier: 0.8,
		Bias:            0.2,
	},
	"power-users": {
		Name:            "Power Users",
		Description:     "Experienced and knowledgeable",
		SpecialAbility:  "Higher chance of correct answers",
		ScoreMultiplier: 1.3,
		Bias:            0.4,
	},
	"newbies": {
		Name:            "Newbies",
		Description:     "Fresh and unpredictable",
		SpecialAbility:  "Random bonus points for correct answers",
		ScoreMultiplier: 1.5,
		Bias:            -0.1,
	},
	"veterans": {
		Name:            "Veterans",
		Description:     "Seasoned and wise",
		SpecialAbility:  "Can spot patterns from previous rounds",
		ScoreMultiplier: 1.1,
		Bias:            0.3,
	},
}

// ストリークボーナスの定数。ストリーク1につき10点、上限50点。
const (
	streakBonusUnit = 10
	streakBonusCap  = 50
)

// CohortEngine は観客のコホート分割とコホート単位のスコア計算を担当する。
// 排他制御はEngine側のロックに任せる（Engine経由でのみ呼ばれる前提）。
type CohortEngine struct {
	cohorts map[string]*models.Cohort
	order   []string
	logger  *zap.Logger
}

func NewCohortEngine(logger *zap.Logger) *CohortEngine {
	ce := &CohortEngine{
		cohorts: make(map[string]*models.Cohort),
		order:   cohortOrder,
		logger:  logger,
	}
	for _, id := range ce.order {
		p := cohortPersonalities[id]
		ce.cohorts[id] = &models.Cohort{
			ID:              id,
			Name:            p.Name,
			Members:         []*models.AudienceMember{},
			Score:           0,
			Description:     p.Description,
			SpecialAbility:  p.SpecialAbility,
			ScoreMultiplier: p.ScoreMultiplier,
			Bias:            p.Bias,
			Streak:          0,
			LastCorrect:     false,
		}
	}
	return ce
}

// AssignToCohort は最もメンバー数の少ないコホートにメンバーを割り当てる。
// 同数の場合は先に定義されたコホートが選ばれる。
func (ce *CohortEngine) AssignToCohort(member *models.AudienceMember) error {
	if len(ce.cohorts) == 0 {
		return ErrNoCohortsAvailable
	}

	smallest := ce.cohorts[ce.order[0]]
	for _, id := range ce.order {
		if len(ce.cohorts[id].Members) < len(smallest.Members) {
			smallest = ce.cohorts[id]
		}
	}

	member.Cohort = smallest.ID
	smallest.Members = append(smallest.Members, member)
	return nil
}

// RemoveFromCohort はメンバーを所属コホートから取り除く。見つからない場合は何もしない。
func (ce *CohortEngine) RemoveFromCohort(memberID string) {
	for _, id := range ce.order {
		cohort := ce.cohorts[id]
		for i, m := range cohort.Members {
			if m.ID == memberID {
				cohort.Members = append(cohort.Members[:i], cohort.Members[i+1:]...)
				return
			}
		}
	}
}

// UpdateCohortScores はラウンド終了時に全コホートのスコアを更新する。
// 計算順序は 正解率 → バイアス → 倍率 → ストリークボーナス で固定。
// バイアスと倍率はどちらも乗算だが適用順を入れ替えてはいけない
// （ストリーク判定は倍率適用前の正解率から導出される）。
func (ce *CohortEngine) UpdateCohortScores(selections map[string]string, correctAnswer string) {
	for _, id := range ce.order {
		cohort := ce.cohorts[id]
		personality := cohortPersonalities[id]

		correctSelections := 0
		for _, member := range cohort.Members {
			if selections[member.ID] == correctAnswer {
				correctSelections++
			}
		}

		accuracy := 0.0
		if len(cohort.Members) > 0 {
			accuracy = float64(correctSelections) / float64(len(cohort.Members))
		}
		baseScore := accuracy * 100

		// 性格バイアスを適用
		biasedScore := baseScore * (1 + personality.Bias)

		// スコア倍率を適用
		multipliedScore := biasedScore * personality.ScoreMultiplier

		// ストリークの更新。前ラウンドと同じ判定結果なら継続、違えば1から
		isCorrect := accuracy > 0.5
		if isCorrect == cohort.LastCorrect {
			cohort.Streak++
		} else {
			cohort.Streak = 1
		}
		cohort.LastCorrect = isCorrect

		// ストリークボーナスを加算
		streakBonus := cohort.Streak * streakBonusUnit
		if streakBonus > streakBonusCap {
			streakBonus = streakBonusCap
		}
		cohort.Score += multipliedScore + float64(streakBonus)
	}
}

// Cohorts は全コホートを定義順で返す。
func (ce *CohortEngine) Cohorts() []*models.Cohort {
	cohorts := make([]*models.Cohort, 0, len(ce.order))
	for _, id := range ce.order {
		cohorts = append(cohorts, ce.cohorts[id])
	}
	return cohorts
}

func (ce *CohortEngine) Cohort(id string) (*models.Cohort, bool) {
	cohort, ok := ce.cohorts[id]
	return cohort, ok
}

// CohortStats は表示用の集計を返す。ここでのAccuracyは先頭メンバーの選択との
// 一致率で、UpdateCohortScoresの正解率とは意図的に別の指標になっている。
func (ce *CohortEngine) CohortStats() map[string]models.CohortStat {
	stats := make(map[string]models.CohortStat, len(ce.order))
	for _, id := range ce.order {
		cohort := ce.cohorts[id]

		agreement := 0
		if len(cohort.Members) > 0 {
			first := cohort.Members[0].SelectedAnswer
			for _, m := range cohort.Members {
				if m.SelectedAnswer == first {
					agreement++
				}
			}
		}

		accuracy := 0.0
		if len(cohort.Members) > 0 {
			accuracy = float64(agreement) / float64(len(cohort.Members))
		}

		stats[id] = models.CohortStat{
			Size:        len(cohort.Members),
			Score:       cohort.Score,
			Accuracy:    accuracy,
			Streak:      cohort.Streak,
			Personality: cohortPersonalities[id],
		}
	}
	return stats
}

func (ce *CohortEngine) Personality(id string) (models.CohortPersonality, bool) {
	p, ok := cohortPersonalities[id]
	return p, ok
}

// Personalities は全コホートの性格のコピーを返す。呼び出し側が変更しても
// 定義テーブルには影響しない。
func (ce *CohortEngine) Personalities() map[string]models.CohortPersonality {
	personalities := make(map[string]models.CohortPersonality, len(cohortPersonalities))
	for id, p := range cohortPersonalities {
		personalities[id] = p
	}
	return personalities
}

// ResetCohorts はメンバー・スコア・ストリークを初期化する。性格は変更しない。
func (ce *CohortEngine) ResetCohorts() {
	for _, cohort := range ce.cohorts {
		cohort.Members = []*models.AudienceMember{}
		cohort.Score = 0
		cohort.Streak = 0
		cohort.LastCorrect = false
	}
}
