package models

import (
	"time"
)

// ゲームのライフサイクル状態。startRound/endRoundの状態遷移チェックに使用。
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Player はターゲット側（画面上の回答者）のプレイヤー
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

// AudienceMember は観客。参加時にコホートへ割り当てられる。
// SelectedAnswer はラウンド中の選択を保持し、次のラウンド開始時にクリアされる。
type AudienceMember struct {
	ID             string `json:"id"`
	Cohort         string `json:"cohort"`
	Score          int    `json:"score"`
	SelectedAnswer string `json:"selectedAnswer,omitempty"`
}

// Game は1ゲーム分の状態。RoundEngineが排他的に所有する。
type Game struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"` // "waiting", "playing", "finished"
	Round          int               `json:"round"`
	CurrentContent *ContentItem      `json:"currentContent,omitempty"`
	Players        []*Player         `json:"players"`
	Audience       []*AudienceMember `json:"audience"`
	FakeAnswers    []string          `json:"fakeAnswers"`
	CorrectAnswer  string            `json:"correctAnswer,omitempty"`
	RoundStartTime time.Time         `json:"roundStartTime,omitempty"`
	RoundEndTime   time.Time         `json:"roundEndTime,omitempty"` // 参考値。サーバー側で強制はしない
}

// RoundSnapshot は startRound 成功時にクライアントへ返すラウンドの初期状態
type RoundSnapshot struct {
	Content            *ContentItem      `json:"content"`
	FakeAnswers        []string          `json:"fakeAnswers"`
	CorrectAnswer      string            `json:"correctAnswer"`
	PlayerSelections   map[string]string `json:"playerSelections"`
	AudienceSelections map[string]string `json:"audienceSelections"`
	Scores             map[string]int    `json:"scores"`
}

// GameStats は endRound 時に集計される統計情報
type GameStats struct {
	TotalRounds          int                `json:"totalRounds"`
	PlayerScores         map[string]int     `json:"playerScores"`
	CohortScores         map[string]float64 `json:"cohortScores"`
	AverageAudienceScore float64            `json:"averageAudienceScore"`
	MostSuccessfulCohort string             `json:"mostSuccessfulCohort"`
	MostSuccessfulPlayer string             `json:"mostSuccessfulPlayer"`
}
