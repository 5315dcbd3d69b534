package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"itvserver/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 正解選択時の固定ポイント
const (
	playerCorrectPoints   = 100
	audienceCorrectPoints = 50
)

// ContentProvider はラウンド開始時に1件のコンテンツを取得する外部コラボレータ。
// 実装はwaybackパッケージにあるが、Engineはこのインターフェースしか知らない。
type ContentProvider interface {
	FetchContent(ctx context.Context, contentType, url string) (*models.ContentItem, error)
}

// Engine は1ゲームのライフサイクルとスコア計算を所有するラウンドエンジン。
// 全操作はmuで直列化されるため、複数のWebSocketゴルーチンから呼び出しても安全。
// 唯一の中断点はStartRound中のコンテンツ取得で、その間ロックは解放されるが
// ステータスは先にplayingへ遷移させてあるので2重のラウンド開始は失敗する。
type Engine struct {
	mu       sync.Mutex
	state    *models.Game
	provider ContentProvider
	cohorts  *CohortEngine
	logger   *zap.Logger

	roundDuration  time.Duration
	maxFakeAnswers int
	contentType    string
	contentURL     string
}

func NewEngine(provider ContentProvider, cohorts *CohortEngine, cfg models.Config, logger *zap.Logger) *Engine {
	e := &Engine{
		provider:       provider,
		cohorts:        cohorts,
		logger:         logger,
		roundDuration:  time.Duration(cfg.RoundDurationMs) * time.Millisecond,
		maxFakeAnswers: cfg.MaxFakeAnswers,
		contentType:    cfg.ContentType,
		contentURL:     cfg.ContentURL,
	}
	e.state = newGame()
	return e
}

func newGame() *models.Game {
	return &models.Game{
		ID:          uuid.New().String(),
		Status:      models.StatusWaiting,
		Round:       0,
		Players:     []*models.Player{},
		Audience:    []*models.AudienceMember{},
		FakeAnswers: []string{},
	}
}

// AddPlayer はプレイヤーを追加する。名前の一意性チェックはしない。
func (e *Engine) AddPlayer(name string, isHost bool) *models.Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := &models.Player{
		ID:     uuid.New().String(),
		Name:   name,
		Score:  0,
		IsHost: isHost,
	}
	e.state.Players = append(e.state.Players, player)
	e.logger.Info("Player added", zap.String("playerID", player.ID), zap.String("name", name), zap.Bool("isHost", isHost))
	return player
}

// RemovePlayer はプレイヤーを取り除く。存在しないIDの場合は何もしない。
func (e *Engine) RemovePlayer(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.state.Players {
		if p.ID == playerID {
			e.state.Players = append(e.state.Players[:i], e.state.Players[i+1:]...)
			e.logger.Info("Player removed", zap.String("playerID", playerID))
			return
		}
	}
}

// AddAudienceMember は観客を追加し、その場でコホートへ割り当てる。
func (e *Engine) AddAudienceMember() (*models.AudienceMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	member := &models.AudienceMember{
		ID:     uuid.New().String(),
		Cohort: "",
		Score:  0,
	}
	if err := e.cohorts.AssignToCohort(member); err != nil {
		return nil, err
	}
	e.state.Audience = append(e.state.Audience, member)
	e.logger.Info("Audience member added", zap.String("memberID", member.ID), zap.String("cohort", member.Cohort))
	return member, nil
}

// RemoveAudienceMember は観客をコホートから外してから観客リストから取り除く。
func (e *Engine) RemoveAudienceMember(memberID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, m := range e.state.Audience {
		if m.ID == memberID {
			e.cohorts.RemoveFromCohort(memberID)
			e.state.Audience = append(e.state.Audience[:i], e.state.Audience[i+1:]...)
			e.logger.Info("Audience member removed", zap.String("memberID", memberID))
			return
		}
	}
}

// StartRound は新しいラウンドを開始する。コンテンツ取得前にステータスを
// playingへ遷移させるため、取得待ちの間に呼ばれた2回目のStartRoundは
// ErrInvalidTransitionで失敗する。取得に失敗した場合ステータスはplayingのまま
// コンテンツ未設定となり、復旧はResetGameを呼ぶ側の責任。
func (e *Engine) StartRound(ctx context.Context) (*models.RoundSnapshot, error) {
	e.mu.Lock()
	if e.state.Status != models.StatusWaiting && e.state.Status != models.StatusFinished {
		e.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	e.state.Status = models.StatusPlaying
	e.state.Round++
	e.state.RoundStartTime = time.Now()
	e.state.RoundEndTime = e.state.RoundStartTime.Add(e.roundDuration)
	round := e.state.Round
	e.mu.Unlock()

	// コンテンツ取得中はロックを保持しない
	content, err := e.provider.FetchContent(ctx, e.contentType, e.contentURL)
	if err != nil {
		e.logger.Error("Failed to fetch content for round", zap.Int("round", round), zap.Error(err))
		return nil, fmt.Errorf("failed to start round: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CurrentContent = content
	e.state.CorrectAnswer = content.ID
	e.state.FakeAnswers = []string{}
	for _, m := range e.state.Audience {
		m.SelectedAnswer = "" // 前ラウンドの選択をクリア
	}
	e.logger.Info("Round started", zap.Int("round", round), zap.String("contentID", content.ID))

	return &models.RoundSnapshot{
		Content:            content,
		FakeAnswers:        []string{},
		CorrectAnswer:      content.ID,
		PlayerSelections:   map[string]string{},
		AudienceSelections: map[string]string{},
		Scores:             map[string]int{},
	}, nil
}

// SubmitFakeAnswer は偽回答をプールに追加する。プレイヤーごとの投稿数制限は
// 意図的に設けておらず、プールの上限だけが唯一のスロットルになっている。
func (e *Engine) SubmitFakeAnswer(playerID, answer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.FakeAnswers) >= e.maxFakeAnswers {
		return ErrTooManyFakeAnswers
	}
	if e.findPlayer(playerID) == nil {
		return ErrPlayerNotFound
	}

	e.state.FakeAnswers = append(e.state.FakeAnswers, answer)
	return nil
}

// SelectAnswer はプレイヤーの回答選択を処理し、正解なら100点を加算する。
// 1ラウンド1回の制限は呼び出し側の責任で、再選択すると再加算される。
func (e *Engine) SelectAnswer(playerID, answerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	// ラウンド開始前はCorrectAnswerが空文字列なので加算対象にしない
	if e.state.CorrectAnswer != "" && answerID == e.state.CorrectAnswer {
		player.Score += playerCorrectPoints
	}
	return nil
}

// SelectAudienceAnswer は観客の回答選択を記録し、正解なら50点を加算する。
func (e *Engine) SelectAudienceAnswer(memberID, answerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	member := e.findMember(memberID)
	if member == nil {
		return ErrMemberNotFound
	}
	member.SelectedAnswer = answerID
	if e.state.CorrectAnswer != "" && answerID == e.state.CorrectAnswer {
		member.Score += audienceCorrectPoints
	}
	return nil
}

// EndRound はラウンドを終了し、コホートスコアを更新して統計を返す。
func (e *Engine) EndRound() (*models.GameStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status != models.StatusPlaying {
		return nil, ErrNoActiveRound
	}

	// 観客の選択をコホートエンジンに渡してスコアを更新
	selections := make(map[string]string, len(e.state.Audience))
	for _, m := range e.state.Audience {
		selections[m.ID] = m.SelectedAnswer
	}
	e.cohorts.UpdateCohortScores(selections, e.state.CorrectAnswer)

	playerScores := make(map[string]int, len(e.state.Players))
	for _, p := range e.state.Players {
		playerScores[p.ID] = p.Score
	}

	cohortScores := make(map[string]float64)
	for _, c := range e.cohorts.Cohorts() {
		cohortScores[c.ID] = c.Score
	}

	audienceTotal := 0
	for _, m := range e.state.Audience {
		audienceTotal += m.Score
	}
	averageAudienceScore := 0.0
	if len(e.state.Audience) > 0 {
		averageAudienceScore = float64(audienceTotal) / float64(len(e.state.Audience))
	}

	stats := &models.GameStats{
		TotalRounds:          e.state.Round,
		PlayerScores:         playerScores,
		CohortScores:         cohortScores,
		AverageAudienceScore: averageAudienceScore,
		MostSuccessfulCohort: e.mostSuccessfulCohort(),
		MostSuccessfulPlayer: e.mostSuccessfulPlayer(),
	}

	e.state.Status = models.StatusFinished
	e.logger.Info("Round ended", zap.Int("round", e.state.Round))
	return stats, nil
}

// GameState は現在のゲーム状態のコピーを返す。以降の変更は反映されない。
func (e *Engine) GameState() models.Game {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := *e.state
	state.Players = append([]*models.Player{}, e.state.Players...)
	state.Audience = append([]*models.AudienceMember{}, e.state.Audience...)
	state.FakeAnswers = append([]string{}, e.state.FakeAnswers...)
	return state
}

// ResetGame はゲームを初期状態に戻し、コホートのメンバー・スコアもリセットする。
func (e *Engine) ResetGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = newGame()
	e.cohorts.ResetCohorts()
	e.logger.Info("Game reset", zap.String("gameID", e.state.ID))
}

// CohortStats は表示用のコホート集計を返す。
func (e *Engine) CohortStats() map[string]models.CohortStat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cohorts.CohortStats()
}

func (e *Engine) findPlayer(playerID string) *models.Player {
	for _, p := range e.state.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (e *Engine) findMember(memberID string) *models.AudienceMember {
	for _, m := range e.state.Audience {
		if m.ID == memberID {
			return m
		}
	}
	return nil
}

// 同点の場合は先に追加された方が選ばれる
func (e *Engine) mostSuccessfulCohort() string {
	cohorts := e.cohorts.Cohorts()
	if len(cohorts) == 0 {
		return ""
	}
	best := cohorts[0]
	for _, c := range cohorts[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best.ID
}

func (e *Engine) mostSuccessfulPlayer() string {
	if len(e.state.Players) == 0 {
		return ""
	}
	best := e.state.Players[0]
	for _, p := range e.state.Players[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best.ID
}
