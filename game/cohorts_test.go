package game

import (
	"fmt"
	"math"
	"testing"

	"itvserver/models"

	"go.uber.org/zap"
)

func newTestCohortEngine() *CohortEngine {
	return NewCohortEngine(zap.NewNop())
}

func addMembers(t *testing.T, ce *CohortEngine, n int) []*models.AudienceMember {
	t.Helper()
	members := make([]*models.AudienceMember, 0, n)
	for i := 0; i < n; i++ {
		m := &models.AudienceMember{ID: fmt.Sprintf("member-%d", i)}
		if err := ce.AssignToCohort(m); err != nil {
			t.Fatalf("AssignToCohort failed: %v", err)
		}
		members = append(members, m)
	}
	return members
}

func TestEightCohortsWithFixedPersonalities(t *testing.T) {
	ce := newTestCohortEngine()
	cohorts := ce.Cohorts()
	if len(cohorts) != 8 {
		t.Fatalf("expected 8 cohorts, got %d", len(cohorts))
	}

	p, ok := ce.Personality("skeptics")
	if !ok {
		t.Fatal("skeptics personality not found")
	}
	if p.Bias != -0.3 || p.ScoreMultiplier != 1.2 {
		t.Errorf("unexpected skeptics personality: bias=%v multiplier=%v", p.Bias, p.ScoreMultiplier)
	}

	for _, c := range cohorts {
		if c.Bias < -1 || c.Bias > 1 {
			t.Errorf("cohort %s has bias out of range: %v", c.ID, c.Bias)
		}
		if c.ScoreMultiplier < 0 {
			t.Errorf("cohort %s has negative multiplier: %v", c.ID, c.ScoreMultiplier)
		}
	}
}

func TestLeastLoadedAssignment(t *testing.T) {
	ce := newTestCohortEngine()
	addMembers(t, ce, 21)

	min, max := math.MaxInt32, 0
	for _, c := range ce.Cohorts() {
		if len(c.Members) < min {
			min = len(c.Members)
		}
		if len(c.Members) > max {
			max = len(c.Members)
		}
	}
	if max-min > 1 {
		t.Errorf("cohort sizes spread too far: min=%d max=%d", min, max)
	}
}

func TestAssignmentTieBreaksByDefinitionOrder(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 3)

	// 空の状態では定義順の先頭3コホートに1人ずつ入る
	want := []string{"skeptics", "believers", "analysts"}
	for i, m := range members {
		if m.Cohort != want[i] {
			t.Errorf("member %d assigned to %s, want %s", i, m.Cohort, want[i])
		}
	}
}

func TestRemoveFromCohort(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 2)

	ce.RemoveFromCohort(members[0].ID)
	cohort, _ := ce.Cohort("skeptics")
	if len(cohort.Members) != 0 {
		t.Errorf("expected empty skeptics after removal, got %d members", len(cohort.Members))
	}

	// 存在しないIDの削除は何もしない
	ce.RemoveFromCohort("no-such-member")
}

func TestUpdateCohortScoresOrderOfOperations(t *testing.T) {
	ce := newTestCohortEngine()

	// skepticsに3人集める：定義順に1人ずつ入るので8の倍数で追加する
	members := addMembers(t, ce, 24)
	skeptics, _ := ce.Cohort("skeptics")
	if len(skeptics.Members) != 3 {
		t.Fatalf("expected 3 skeptics members, got %d", len(skeptics.Members))
	}

	// skepticsの3人中2人が正解
	selections := map[string]string{}
	for _, m := range members {
		selections[m.ID] = "wrong"
	}
	selections[skeptics.Members[0].ID] = "correct"
	selections[skeptics.Members[1].ID] = "correct"

	ce.UpdateCohortScores(selections, "correct")

	// accuracy 2/3 → base 66.67 → bias -0.3 → 46.67 → multiplier 1.2 → 56.0
	// accuracy > 0.5 なので isCorrect=true、初回なので streak=1、ボーナス10
	accuracy := 2.0 / 3.0
	want := accuracy*100*(1-0.3)*1.2 + 10
	if math.Abs(skeptics.Score-want) > 1e-9 {
		t.Errorf("skeptics score = %v, want %v", skeptics.Score, want)
	}
	if skeptics.Streak != 1 {
		t.Errorf("skeptics streak = %d, want 1", skeptics.Streak)
	}
	if !skeptics.LastCorrect {
		t.Error("skeptics lastCorrect should be true")
	}
}

func TestStreakBonusGrowth(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 16) // skepticsとbelieversに2人ずつ

	selections := map[string]string{}
	for _, m := range members {
		selections[m.ID] = "correct" // 全員正解
	}

	ce.UpdateCohortScores(selections, "correct")
	skeptics, _ := ce.Cohort("skeptics")
	believers, _ := ce.Cohort("believers")
	if skeptics.Streak != 1 || believers.Streak != 1 {
		t.Fatalf("after first round: streaks = %d, %d, want 1, 1", skeptics.Streak, believers.Streak)
	}

	scoreAfterFirst := skeptics.Score
	ce.UpdateCohortScores(selections, "correct")
	if skeptics.Streak != 2 {
		t.Errorf("after second round: skeptics streak = %d, want 2", skeptics.Streak)
	}

	// 2回目のボーナスは min(2*10, 50) = 20
	perRound := 100 * (1 - 0.3) * 1.2
	wantSecond := scoreAfterFirst + perRound + 20
	if math.Abs(skeptics.Score-wantSecond) > 1e-9 {
		t.Errorf("skeptics score after second round = %v, want %v", skeptics.Score, wantSecond)
	}
}

func TestStreakBonusCap(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 8)

	selections := map[string]string{}
	for _, m := range members {
		selections[m.ID] = "correct"
	}

	// 7ラウンド連続で同じ結果ならストリークは7だがボーナスは50で頭打ち
	for i := 0; i < 7; i++ {
		ce.UpdateCohortScores(selections, "correct")
	}
	skeptics, _ := ce.Cohort("skeptics")
	if skeptics.Streak != 7 {
		t.Fatalf("skeptics streak = %d, want 7", skeptics.Streak)
	}

	perRound := 100 * (1 - 0.3) * 1.2
	want := 7*perRound + 10 + 20 + 30 + 40 + 50 + 50 + 50
	if math.Abs(skeptics.Score-want) > 1e-9 {
		t.Errorf("skeptics score = %v, want %v", skeptics.Score, want)
	}
}

func TestStreakResetsOnOutcomeChange(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 8)

	correct := map[string]string{}
	wrong := map[string]string{}
	for _, m := range members {
		correct[m.ID] = "correct"
		wrong[m.ID] = "wrong"
	}

	ce.UpdateCohortScores(correct, "correct")
	ce.UpdateCohortScores(correct, "correct")
	skeptics, _ := ce.Cohort("skeptics")
	if skeptics.Streak != 2 {
		t.Fatalf("skeptics streak = %d, want 2", skeptics.Streak)
	}

	// 判定結果が変わるとストリークは1から
	ce.UpdateCohortScores(wrong, "correct")
	if skeptics.Streak != 1 {
		t.Errorf("skeptics streak after outcome change = %d, want 1", skeptics.Streak)
	}
	if skeptics.LastCorrect {
		t.Error("skeptics lastCorrect should be false")
	}
}

func TestCohortStatsUsesAgreementNotCorrectness(t *testing.T) {
	ce := newTestCohortEngine()
	addMembers(t, ce, 16) // skepticsに2人

	skeptics, _ := ce.Cohort("skeptics")
	skeptics.Members[0].SelectedAnswer = "a"
	skeptics.Members[1].SelectedAnswer = "b"

	stats := ce.CohortStats()
	// 正解とは無関係に、先頭メンバーの選択との一致率を返す
	if stats["skeptics"].Accuracy != 0.5 {
		t.Errorf("skeptics agreement = %v, want 0.5", stats["skeptics"].Accuracy)
	}
	if stats["skeptics"].Size != 2 {
		t.Errorf("skeptics size = %d, want 2", stats["skeptics"].Size)
	}
	if stats["skeptics"].Personality.Name != "Skeptics" {
		t.Errorf("unexpected personality: %s", stats["skeptics"].Personality.Name)
	}
}

func TestResetCohorts(t *testing.T) {
	ce := newTestCohortEngine()
	members := addMembers(t, ce, 8)

	selections := map[string]string{}
	for _, m := range members {
		selections[m.ID] = "correct"
	}
	ce.UpdateCohortScores(selections, "correct")

	before := map[string]string{}
	for _, c := range ce.Cohorts() {
		before[c.ID] = c.Name
	}

	ce.ResetCohorts()
	for _, c := range ce.Cohorts() {
		if len(c.Members) != 0 {
			t.Errorf("cohort %s still has %d members after reset", c.ID, len(c.Members))
		}
		if c.Score != 0 {
			t.Errorf("cohort %s score = %v after reset", c.ID, c.Score)
		}
		if c.Streak != 0 || c.LastCorrect {
			t.Errorf("cohort %s streak state not reset", c.ID)
		}
		if c.Name != before[c.ID] {
			t.Errorf("cohort %s name changed across reset: %s -> %s", c.ID, before[c.ID], c.Name)
		}
	}
}

func TestUpdateWithEmptyCohortHasZeroAccuracy(t *testing.T) {
	ce := newTestCohortEngine()
	// メンバーなしでも落ちない。accuracyは0として扱われる
	ce.UpdateCohortScores(map[string]string{}, "correct")

	skeptics, _ := ce.Cohort("skeptics")
	if skeptics.LastCorrect {
		t.Error("empty cohort should not be marked correct")
	}
}

func TestPersonalitiesReturnsIndependentCopy(t *testing.T) {
	ce := newTestCohortEngine()

	personalities := ce.Personalities()
	personalities["skeptics"] = models.CohortPersonality{Bias: 9, ScoreMultiplier: 9}
	delete(personalities, "trolls")

	// 返されたマップへの変更が定義テーブルへ漏れないこと
	skeptics, ok := ce.Personality("skeptics")
	if !ok || skeptics.Bias != -0.3 || skeptics.ScoreMultiplier != 1.2 {
		t.Errorf("skeptics personality changed: %+v", skeptics)
	}
	if _, ok := ce.Personality("trolls"); !ok {
		t.Error("trolls personality disappeared from the table")
	}
	if got := len(ce.Personalities()); got != 8 {
		t.Errorf("personality table size = %d, want 8", got)
	}
}
