package game

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"itvserver/models"

	"go.uber.org/zap"
)

// テスト用のコンテンツプロバイダ。固定のContentItemか固定のエラーを返す。
type stubProvider struct {
	item  *models.ContentItem
	err   error
	calls int
}

func (p *stubProvider) FetchContent(ctx context.Context, contentType, url string) (*models.ContentItem, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.item, nil
}

func testConfig() models.Config {
	return models.Config{
		RoundDurationMs: 30000,
		MaxFakeAnswers:  3,
		ContentType:     models.ContentTypeReddit,
		ContentURL:      "https://reddit.com/r/AskReddit",
	}
}

func newTestEngine(provider ContentProvider) *Engine {
	logger := zap.NewNop()
	return NewEngine(provider, NewCohortEngine(logger), testConfig(), logger)
}

func defaultProvider() *stubProvider {
	return &stubProvider{item: &models.ContentItem{
		Type:    models.ContentTypeReddit,
		ID:      "content-1",
		URL:     "https://web.archive.org/web/2012/https://reddit.com/r/AskReddit",
		Content: "What is the best thing you have ever eaten?",
		Author:  "some_redditor",
	}}
}

func TestNewGameStartsWaiting(t *testing.T) {
	e := newTestEngine(defaultProvider())
	state := e.GameState()
	if state.Status != models.StatusWaiting {
		t.Errorf("new game status = %s, want waiting", state.Status)
	}
	if state.Round != 0 {
		t.Errorf("new game round = %d, want 0", state.Round)
	}
	if state.ID == "" {
		t.Error("new game has empty ID")
	}
}

func TestStartRound(t *testing.T) {
	e := newTestEngine(defaultProvider())

	snapshot, err := e.StartRound(context.Background())
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if snapshot.Content.ID != "content-1" {
		t.Errorf("snapshot content ID = %s, want content-1", snapshot.Content.ID)
	}
	if snapshot.CorrectAnswer != "content-1" {
		t.Errorf("snapshot correct answer = %s, want content-1", snapshot.CorrectAnswer)
	}
	if len(snapshot.FakeAnswers) != 0 {
		t.Errorf("snapshot has %d fake answers, want 0", len(snapshot.FakeAnswers))
	}

	state := e.GameState()
	if state.Status != models.StatusPlaying {
		t.Errorf("status after StartRound = %s, want playing", state.Status)
	}
	if state.Round != 1 {
		t.Errorf("round = %d, want 1", state.Round)
	}
	if !state.RoundEndTime.Equal(state.RoundStartTime.Add(30 * time.Second)) {
		t.Errorf("round end time not start + duration: start=%v end=%v", state.RoundStartTime, state.RoundEndTime)
	}
}

func TestStartRoundWhilePlayingFails(t *testing.T) {
	e := newTestEngine(defaultProvider())

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("first StartRound failed: %v", err)
	}
	if _, err := e.StartRound(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second StartRound error = %v, want ErrInvalidTransition", err)
	}

	// ラウンド終了後は再び開始できる
	if _, err := e.EndRound(); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	if _, err := e.StartRound(context.Background()); err != nil {
		t.Errorf("StartRound after EndRound failed: %v", err)
	}
}

func TestStartRoundProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("no archived snapshot available")}
	e := newTestEngine(provider)

	_, err := e.StartRound(context.Background())
	if err == nil {
		t.Fatal("StartRound should fail when provider fails")
	}

	// 失敗してもステータスはplayingのまま。復旧はResetGameで行う
	state := e.GameState()
	if state.Status != models.StatusPlaying {
		t.Errorf("status after provider failure = %s, want playing", state.Status)
	}
	if state.CurrentContent != nil {
		t.Error("content should not be set after provider failure")
	}

	e.ResetGame()
	if e.GameState().Status != models.StatusWaiting {
		t.Error("status after reset should be waiting")
	}
}

func TestEndRoundWithoutStartFails(t *testing.T) {
	e := newTestEngine(defaultProvider())
	if _, err := e.EndRound(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("EndRound error = %v, want ErrNoActiveRound", err)
	}
}

func TestSubmitFakeAnswer(t *testing.T) {
	e := newTestEngine(defaultProvider())
	player := e.AddPlayer("alice", false)

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	// 上限（3件）までは同じプレイヤーでも投稿できる
	for i := 0; i < 3; i++ {
		if err := e.SubmitFakeAnswer(player.ID, "fake answer"); err != nil {
			t.Fatalf("SubmitFakeAnswer %d failed: %v", i, err)
		}
	}
	if err := e.SubmitFakeAnswer(player.ID, "one too many"); !errors.Is(err, ErrTooManyFakeAnswers) {
		t.Errorf("4th SubmitFakeAnswer error = %v, want ErrTooManyFakeAnswers", err)
	}
	if got := len(e.GameState().FakeAnswers); got != 3 {
		t.Errorf("fake answer pool size = %d, want 3", got)
	}

	if err := e.SubmitFakeAnswer("unknown", "fake"); !errors.Is(err, ErrTooManyFakeAnswers) {
		// プールが満杯の場合はプレイヤー確認より先に上限エラーになる
		t.Errorf("SubmitFakeAnswer with full pool = %v, want ErrTooManyFakeAnswers", err)
	}

	e.ResetGame()
	if err := e.SubmitFakeAnswer("unknown", "fake"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("SubmitFakeAnswer with unknown player = %v, want ErrPlayerNotFound", err)
	}
}

func TestSelectAnswerScoring(t *testing.T) {
	e := newTestEngine(defaultProvider())
	player := e.AddPlayer("alice", false)

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	if err := e.SelectAnswer(player.ID, "wrong-answer"); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if got := e.GameState().Players[0].Score; got != 0 {
		t.Errorf("score after wrong answer = %d, want 0", got)
	}

	if err := e.SelectAnswer(player.ID, "content-1"); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if got := e.GameState().Players[0].Score; got != 100 {
		t.Errorf("score after correct answer = %d, want 100", got)
	}

	if err := e.SelectAnswer("unknown", "content-1"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("SelectAnswer with unknown player = %v, want ErrPlayerNotFound", err)
	}
}

func TestSelectAudienceAnswerScoring(t *testing.T) {
	e := newTestEngine(defaultProvider())
	member, err := e.AddAudienceMember()
	if err != nil {
		t.Fatalf("AddAudienceMember failed: %v", err)
	}

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	if err := e.SelectAudienceAnswer(member.ID, "content-1"); err != nil {
		t.Fatalf("SelectAudienceAnswer failed: %v", err)
	}
	state := e.GameState()
	if state.Audience[0].Score != 50 {
		t.Errorf("audience score = %d, want 50", state.Audience[0].Score)
	}
	if state.Audience[0].SelectedAnswer != "content-1" {
		t.Errorf("selected answer = %s, want content-1", state.Audience[0].SelectedAnswer)
	}

	if err := e.SelectAudienceAnswer("unknown", "content-1"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("SelectAudienceAnswer with unknown member = %v, want ErrMemberNotFound", err)
	}
}

func TestSelectionClearedOnNextRound(t *testing.T) {
	e := newTestEngine(defaultProvider())
	member, err := e.AddAudienceMember()
	if err != nil {
		t.Fatalf("AddAudienceMember failed: %v", err)
	}

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if err := e.SelectAudienceAnswer(member.ID, "content-1"); err != nil {
		t.Fatalf("SelectAudienceAnswer failed: %v", err)
	}
	if _, err := e.EndRound(); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("second StartRound failed: %v", err)
	}
	if got := e.GameState().Audience[0].SelectedAnswer; got != "" {
		t.Errorf("selected answer not cleared at round start: %q", got)
	}
}

func TestAudienceSpreadAndEndRoundStats(t *testing.T) {
	e := newTestEngine(defaultProvider())
	host := e.AddPlayer("host", true)
	e.AddPlayer("bob", false)

	members := make([]*models.AudienceMember, 0, 3)
	for i := 0; i < 3; i++ {
		m, err := e.AddAudienceMember()
		if err != nil {
			t.Fatalf("AddAudienceMember failed: %v", err)
		}
		members = append(members, m)
	}

	// 最小コホート優先なので3人は別々のコホートに入る
	seen := map[string]bool{}
	for _, m := range members {
		if seen[m.Cohort] {
			t.Errorf("cohort %s assigned twice", m.Cohort)
		}
		seen[m.Cohort] = true
	}

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	// 観客2人が正解、1人が不正解。ホストも正解する
	if err := e.SelectAudienceAnswer(members[0].ID, "content-1"); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectAudienceAnswer(members[1].ID, "content-1"); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectAudienceAnswer(members[2].ID, "nope"); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectAnswer(host.ID, "content-1"); err != nil {
		t.Fatal(err)
	}

	stats, err := e.EndRound()
	if err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}

	if stats.TotalRounds != 1 {
		t.Errorf("total rounds = %d, want 1", stats.TotalRounds)
	}
	if stats.PlayerScores[host.ID] != 100 {
		t.Errorf("host score = %d, want 100", stats.PlayerScores[host.ID])
	}
	if stats.MostSuccessfulPlayer != host.ID {
		t.Errorf("most successful player = %s, want %s", stats.MostSuccessfulPlayer, host.ID)
	}

	// 観客の平均: (50+50+0)/3
	wantAvg := 100.0 / 3.0
	if math.Abs(stats.AverageAudienceScore-wantAvg) > 1e-9 {
		t.Errorf("average audience score = %v, want %v", stats.AverageAudienceScore, wantAvg)
	}

	// 正解した観客のコホート（1人中1人正解、accuracy 1 > 0.5）のスコアは
	// bias→multiplier→streakボーナスの順で計算される
	first := members[0].Cohort
	p, _ := e.cohorts.Personality(first)
	want := 100*(1+p.Bias)*p.ScoreMultiplier + 10
	if math.Abs(stats.CohortScores[first]-want) > 1e-9 {
		t.Errorf("cohort %s score = %v, want %v", first, stats.CohortScores[first], want)
	}

	if e.GameState().Status != models.StatusFinished {
		t.Errorf("status after EndRound = %s, want finished", e.GameState().Status)
	}
}

func TestMostSuccessfulTieGoesToFirst(t *testing.T) {
	e := newTestEngine(defaultProvider())
	first := e.AddPlayer("first", false)
	e.AddPlayer("second", false)

	if _, err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	stats, err := e.EndRound()
	if err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}

	// 全員0点の場合は先に追加されたプレイヤーが選ばれる
	if stats.MostSuccessfulPlayer != first.ID {
		t.Errorf("most successful player = %s, want %s", stats.MostSuccessfulPlayer, first.ID)
	}
	// コホートも同様に定義順の先頭が選ばれる
	if stats.MostSuccessfulCohort != "skeptics" {
		t.Errorf("most successful cohort = %s, want skeptics", stats.MostSuccessfulCohort)
	}
}

func TestRemovePlayer(t *testing.T) {
	e := newTestEngine(defaultProvider())
	alice := e.AddPlayer("alice", false)
	bob := e.AddPlayer("bob", false)

	e.RemovePlayer(alice.ID)
	state := e.GameState()
	if len(state.Players) != 1 || state.Players[0].ID != bob.ID {
		t.Errorf("unexpected players after removal: %+v", state.Players)
	}

	// 存在しないIDの削除は何もしない
	e.RemovePlayer("no-such-player")
	if len(e.GameState().Players) != 1 {
		t.Error("RemovePlayer with unknown ID changed the player list")
	}
}

func TestRemoveAudienceMemberDetachesFromCohort(t *testing.T) {
	e := newTestEngine(defaultProvider())
	member, err := e.AddAudienceMember()
	if err != nil {
		t.Fatalf("AddAudienceMember failed: %v", err)
	}

	e.RemoveAudienceMember(member.ID)
	if len(e.GameState().Audience) != 0 {
		t.Error("audience list not empty after removal")
	}
	cohort, _ := e.cohorts.Cohort(member.Cohort)
	if len(cohort.Members) != 0 {
		t.Error("member still attached to cohort after removal")
	}
}

func TestResetGameResetsCohorts(t *testing.T) {
	e := newTestEngine(defaultProvider())
	e.AddPlayer("alice", false)
	if _, err := e.AddAudienceMember(); err != nil {
		t.Fatal(err)
	}

	oldID := e.GameState().ID
	e.ResetGame()

	state := e.GameState()
	if state.ID == oldID {
		t.Error("game ID unchanged after reset")
	}
	if state.Status != models.StatusWaiting || state.Round != 0 {
		t.Errorf("unexpected state after reset: status=%s round=%d", state.Status, state.Round)
	}
	if len(state.Players) != 0 || len(state.Audience) != 0 {
		t.Error("players or audience not cleared by reset")
	}
	for _, c := range e.cohorts.Cohorts() {
		if len(c.Members) != 0 {
			t.Errorf("cohort %s not emptied by reset", c.ID)
		}
	}
}

func TestGameStateIsACopy(t *testing.T) {
	e := newTestEngine(defaultProvider())
	state := e.GameState()

	e.AddPlayer("alice", false)
	if len(state.Players) != 0 {
		t.Error("previously returned state reflects later mutations")
	}
}

func TestSelectAnswerBeforeAnyRoundAwardsNothing(t *testing.T) {
	e := newTestEngine(defaultProvider())
	player := e.AddPlayer("early bird", false)

	// ラウンド開始前はCorrectAnswerが空文字列。空文字列を選んでも加算されない
	if err := e.SelectAnswer(player.ID, ""); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if got := e.GameState().Players[0].Score; got != 0 {
		t.Errorf("score after selecting before any round = %d, want 0", got)
	}
}

func TestSelectAudienceAnswerBeforeAnyRoundAwardsNothing(t *testing.T) {
	e := newTestEngine(defaultProvider())
	member, err := e.AddAudienceMember()
	if err != nil {
		t.Fatalf("AddAudienceMember failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := e.SelectAudienceAnswer(member.ID, ""); err != nil {
			t.Fatalf("SelectAudienceAnswer failed: %v", err)
		}
	}
	if got := e.GameState().Audience[0].Score; got != 0 {
		t.Errorf("score after repeated empty selections = %d, want 0", got)
	}
}
