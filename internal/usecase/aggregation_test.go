package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/headtohead"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
)

func played(id, home, away int64, hs, as int, kickoff time.Time) match.Match {
	k := kickoff
	return match.Match{ID: id, LeagueID: 1, SeasonID: 1, HomeTeamID: home, AwayTeamID: away, HomeScore: &hs, AwayScore: &as, KickoffTime: &k}
}

func fixture(id, home, away int64, kickoff time.Time) match.Match {
	k := kickoff
	return match.Match{ID: id, LeagueID: 1, SeasonID: 1, HomeTeamID: home, AwayTeamID: away, KickoffTime: &k}
}

func findRow(t *testing.T, rows []standing.Row, teamID int64) standing.Row {
	t.Helper()
	for _, r := range rows {
		if r.TeamID == teamID {
			return r
		}
	}
	t.Fatalf("team %d missing from table", teamID)
	return standing.Row{}
}

func TestComputeStandings_FourteenPointExample(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 10, 1, 15, 0, 0, 0, time.UTC)
	matches := []match.Match{
		played(1, 1, 2, 30, 5, day),
		played(2, 3, 1, 5, 30, day.AddDate(0, 0, 7)),
		played(3, 1, 4, 20, 5, day.AddDate(0, 0, 14)),
		played(4, 5, 1, 10, 10, day.AddDate(0, 0, 21)),
		played(5, 1, 6, 10, 35, day.AddDate(0, 0, 28)),
		fixture(6, 1, 2, day.AddDate(0, 1, 0)),
	}
	names := map[int64]string{1: "Stormers", 2: "Bulls", 3: "Sharks", 4: "Lions", 5: "Leinster", 6: "Munster"}

	rows := ComputeStandings(1, 1, matches, names)
	if len(rows) != 6 {
		t.Fatalf("expected every team in scope, got %d rows", len(rows))
	}

	got := findRow(t, rows, 1)
	if got.GamesPlayed != 5 || got.Wins != 3 || got.Draws != 1 || got.Losses != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.PointsFor != 100 || got.PointsAgainst != 60 || got.PointsDiff != 40 {
		t.Fatalf("unexpected points: %+v", got)
	}
	if got.LosingBonusPoints != 0 || got.TryBonusPoints != 0 {
		t.Fatalf("expected no bonus points: %+v", got)
	}
	if got.CompetitionPoints != 14 {
		t.Fatalf("competition points=%d want 14", got.CompetitionPoints)
	}
	if rows[0].TeamID != 1 || rows[0].Position != 1 {
		t.Fatalf("expected team 1 on top, got %+v", rows[0])
	}
	for i, r := range rows {
		if r.Position != i+1 {
			t.Fatalf("positions must run 1..n, got %d at %d", r.Position, i)
		}
	}
}

func TestComputeStandings_LosingBonusMargin(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 10, 1, 15, 0, 0, 0, time.UTC)
	rows := ComputeStandings(1, 1, []match.Match{
		played(1, 1, 2, 20, 27, day),
		played(2, 3, 4, 20, 28, day),
		played(3, 5, 6, 19, 20, day),
	}, nil)

	if r := findRow(t, rows, 1); r.LosingBonusPoints != 1 || r.CompetitionPoints != 1 {
		t.Fatalf("seven point loss must earn a bonus: %+v", r)
	}
	if r := findRow(t, rows, 3); r.LosingBonusPoints != 0 || r.CompetitionPoints != 0 {
		t.Fatalf("eight point loss must not earn a bonus: %+v", r)
	}
	if r := findRow(t, rows, 5); r.CompetitionPoints != 1 {
		t.Fatalf("one point loss must earn a bonus: %+v", r)
	}
	if r := findRow(t, rows, 2); r.CompetitionPoints != standing.PointsWin {
		t.Fatalf("winner gets %d points: %+v", standing.PointsWin, r)
	}
}

func TestRankStandings_TieBreaks(t *testing.T) {
	t.Parallel()

	rows := RankStandings([]standing.Row{
		{TeamID: 4, TeamName: "Bulls", CompetitionPoints: 10, PointsDiff: 5, PointsFor: 50},
		{TeamID: 3, TeamName: "Bulls", CompetitionPoints: 10, PointsDiff: 5, PointsFor: 50},
		{TeamID: 2, TeamName: "Axe", CompetitionPoints: 10, PointsDiff: 5, PointsFor: 40},
		{TeamID: 1, TeamName: "Zed", CompetitionPoints: 10, PointsDiff: 9, PointsFor: 10},
		{TeamID: 5, TeamName: "Aaa", CompetitionPoints: 12, PointsDiff: -20, PointsFor: 10},
	})

	want := []int64{5, 1, 3, 4, 2}
	for i, id := range want {
		if rows[i].TeamID != id {
			t.Fatalf("position %d: got team %d want %d (%+v)", i+1, rows[i].TeamID, id, rows)
		}
	}
}

func summaries(ms ...match.Match) []match.Summary {
	out := make([]match.Summary, 0, len(ms))
	for _, m := range ms {
		out = append(out, match.Summary{Match: m})
	}
	return out
}

func TestComputeHeadToHead_StreakExample(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	matches := summaries(
		played(1, 10, 20, 20, 10, day),                  // A beats B
		played(2, 20, 10, 25, 12, day.AddDate(0, 1, 0)), // B beats A
		played(3, 10, 20, 17, 17, day.AddDate(0, 2, 0)), // Draw, most recent
	)

	rec := ComputeHeadToHead(matches, []int64{10}, []int64{20}, "Stormers", "Bulls", day.AddDate(1, 0, 0), 10)
	if rec.Streak == nil || rec.Streak.Side != headtohead.SideDraw || rec.Streak.Label != "Draw" || rec.Streak.Length != 1 {
		t.Fatalf("unexpected streak: %+v", rec.Streak)
	}
	if rec.Total != 3 || rec.WinsA != 1 || rec.WinsB != 1 || rec.Draws != 1 {
		t.Fatalf("unexpected counts: %+v", rec)
	}
	if rec.WinRateA != 33.3 || rec.DrawRate != 33.3 {
		t.Fatalf("unexpected rates: a=%v draw=%v", rec.WinRateA, rec.DrawRate)
	}
	if rec.Recent[0].ID != 3 || rec.Recent[2].ID != 1 {
		t.Fatalf("recent must be newest first: %+v", rec.Recent)
	}
}

func TestComputeHeadToHead_WinningStreakStopsAtDraw(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	matches := summaries(
		played(1, 10, 20, 30, 3, day),
		played(2, 10, 20, 9, 9, day.AddDate(0, 1, 0)),
		played(3, 20, 10, 14, 21, day.AddDate(0, 2, 0)),
		played(4, 10, 20, 28, 7, day.AddDate(0, 3, 0)),
	)

	rec := ComputeHeadToHead(matches, []int64{10}, []int64{20}, "Stormers", "Bulls", day.AddDate(1, 0, 0), 2)
	if rec.Streak == nil || rec.Streak.Side != headtohead.SideA || rec.Streak.Label != "Stormers win" || rec.Streak.Length != 2 {
		t.Fatalf("unexpected streak: %+v", rec.Streak)
	}
	if len(rec.Recent) != 2 {
		t.Fatalf("recent list must honour limit, got %d", len(rec.Recent))
	}
	if rec.Total != 4 || rec.WinsA != 3 {
		t.Fatalf("limit must not cap the record: %+v", rec)
	}
	if rec.WinRateA != 75 || rec.WinRateB != 0 || rec.DrawRate != 25 {
		t.Fatalf("unexpected rates: %+v", rec)
	}
}

func TestComputeHeadToHead_Symmetry(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	matches := summaries(
		played(1, 10, 20, 30, 3, day),
		played(2, 21, 10, 22, 9, day.AddDate(0, 1, 0)),
		played(3, 20, 11, 14, 14, day.AddDate(0, 2, 0)),
		played(4, 10, 30, 50, 0, day.AddDate(0, 3, 0)),
	)
	a, b := []int64{10, 11}, []int64{20, 21}
	now := day.AddDate(1, 0, 0)

	ab := ComputeHeadToHead(matches, a, b, "Stormers", "Bulls", now, 10)
	ba := ComputeHeadToHead(matches, b, a, "Bulls", "Stormers", now, 10)

	if ab.WinsA != ba.WinsB || ab.WinsB != ba.WinsA || ab.Draws != ba.Draws || ab.Total != ba.Total {
		t.Fatalf("asymmetric result: ab=%+v ba=%+v", ab, ba)
	}
	if ab.Total != 3 {
		t.Fatalf("match against a third team must be ignored, total=%d", ab.Total)
	}
}

func TestComputeHeadToHead_UpcomingAndEmpty(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	matches := summaries(
		fixture(1, 10, 20, now.AddDate(0, 2, 0)),
		fixture(2, 20, 10, now.AddDate(0, 1, 0)),
		fixture(3, 20, 10, now.AddDate(0, -1, 0)),
	)

	rec := ComputeHeadToHead(matches, []int64{10}, []int64{20}, "A", "B", now, 10)
	if rec.Total != 0 || rec.WinRateA != 0 || rec.Streak != nil {
		t.Fatalf("expected empty record: %+v", rec)
	}
	if len(rec.Upcoming) != 2 || rec.Upcoming[0].ID != 2 || rec.Upcoming[1].ID != 1 {
		t.Fatalf("upcoming must be future fixtures ascending: %+v", rec.Upcoming)
	}
	if rec.Recent == nil {
		t.Fatalf("recent must be an empty list, not nil")
	}
}
