package models

// CohortPersonality はコホート固有の性格設定。プロセス起動時に8種類が固定生成され、
// 以降は変更されない。SpecialAbilityは表示用テキストでスコア計算には使わない。
type CohortPersonality struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SpecialAbility  string  `json:"specialAbility"`
	ScoreMultiplier float64 `json:"scoreMultiplier"`
	Bias            float64 `json:"bias"` // -1から1。-1は常に不正解寄り、1は常に正解寄り
}

// Cohort は観客のセグメント。メンバーリストとスコア・ストリークのみ可変。
type Cohort struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Members         []*AudienceMember `json:"members"`
	Score           float64           `json:"score"`
	Description     string            `json:"description"`
	SpecialAbility  string            `json:"specialAbility"`
	ScoreMultiplier float64           `json:"scoreMultiplier"`
	Bias            float64           `json:"bias"`
	Streak          int               `json:"streak"`
	LastCorrect     bool              `json:"lastCorrect"`
}

// CohortStat はコホートごとの集計値。Accuracyは「先頭メンバーとの一致率」で、
// スコア計算で使う正解率とは別物（仕様上そのまま残している）。
type CohortStat struct {
	Size        int               `json:"size"`
	Score       float64           `json:"score"`
	Accuracy    float64           `json:"accuracy"`
	Streak      int               `json:"streak"`
	Personality CohortPersonality `json:"personality"`
}
