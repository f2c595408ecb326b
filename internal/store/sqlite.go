package store

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PropScout/internal/factors"
	"PropScout/internal/model"
)

// SQLite persists to a local SQLite database.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode: the HTTP server reads while the refresh pipeline writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS grading_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at         TEXT NOT NULL,
			season         TEXT NOT NULL,
			games_count    INTEGER DEFAULT 0,
			props_total    INTEGER DEFAULT 0,
			props_graded   INTEGER DEFAULT 0,
			props_eligible INTEGER DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS saved_slips (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER REFERENCES grading_runs(id),
			saved_at         TEXT NOT NULL,
			target_decimal   REAL,
			combined_odds    REAL,
			avg_value_score  REAL,
			has_correlated   INTEGER DEFAULT 0,
			bookmaker_filter TEXT,
			outcome          TEXT,
			stake            REAL,
			profit_loss      REAL,
			result_at        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_slips_run_id ON saved_slips(run_id)`,

		`CREATE TABLE IF NOT EXISTS slip_legs (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			slip_id              INTEGER NOT NULL REFERENCES saved_slips(id) ON DELETE CASCADE,
			player_name          TEXT NOT NULL,
			market               TEXT NOT NULL,
			market_label         TEXT,
			line                 REAL NOT NULL,
			side                 TEXT NOT NULL,
			odds                 REAL NOT NULL,
			bookmaker            TEXT,
			is_preferred         INTEGER DEFAULT 0,
			value_score          REAL,
			score_consistency    REAL,
			score_vs_opponent    REAL,
			score_home_away      REAL,
			score_injury         REAL,
			score_team_context   REAL,
			score_season_avg     REAL,
			score_blowout_risk   REAL,
			score_volume_context REAL,
			leg_result           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slip_legs_slip_id ON slip_legs(slip_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLite) SaveRun(season string, gamesCount, propsTotal, propsGraded, propsEligible int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO grading_runs
		(run_at, season, games_count, props_total, props_graded, props_eligible)
		VALUES (?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), season,
		gamesCount, propsTotal, propsGraded, propsEligible,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLite) LatestRunID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow("SELECT id FROM grading_runs ORDER BY run_at DESC LIMIT 1").Scan(&id)
	if err != nil {
		return 0, false
	}
	return id, true
}

// factorScore picks one factor's score out of a result list. The opponent
// and location factors carry dynamic names ("vs LAL", "Home Performance"),
// so those match by prefix and suffix.
func factorScore(results []model.FactorResult, name string) float64 {
	for _, f := range results {
		if f.Name == name {
			return f.Score
		}
		if name == "vs Opponent" && strings.HasPrefix(f.Name, "vs ") {
			return f.Score
		}
		if name == factors.NameHomeAway && strings.HasSuffix(f.Name, " Performance") {
			return f.Score
		}
	}
	return 0
}

func (s *SQLite) SaveSlip(slip *model.BetSlip, runID int64, bookmakerFilter string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	combined, _ := slip.CombinedOdds.Float64()
	target, _ := slip.TargetOdds.Float64()

	res, err := tx.Exec(`INSERT INTO saved_slips
		(run_id, saved_at, target_decimal, combined_odds, avg_value_score,
		 has_correlated, bookmaker_filter)
		VALUES (?,?,?,?,?,?,?)`,
		nullableID(runID), time.Now().UTC().Format(time.RFC3339),
		target, combined, slip.TotalValue, boolInt(slip.Correlated), bookmakerFilter,
	)
	if err != nil {
		return 0, err
	}
	slipID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, leg := range slip.Legs {
		vp := leg.Prop
		odds, _ := leg.Odds.Float64()
		_, err := tx.Exec(`INSERT INTO slip_legs
			(slip_id, player_name, market, market_label, line, side, odds,
			 bookmaker, is_preferred, value_score,
			 score_consistency, score_vs_opponent, score_home_away, score_injury,
			 score_team_context, score_season_avg, score_blowout_risk, score_volume_context)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			slipID, vp.Prop.PlayerName, string(vp.Prop.Market), vp.Prop.Market.Label(),
			vp.Prop.Line, string(leg.Side), odds,
			vp.Prop.Bookmaker, boolInt(vp.Prop.Preferred), vp.ValueScore,
			factorScore(vp.Factors, factors.NameConsistency),
			factorScore(vp.Factors, "vs Opponent"),
			factorScore(vp.Factors, factors.NameHomeAway),
			factorScore(vp.Factors, factors.NameInjury),
			factorScore(vp.Factors, factors.NameTeamContext),
			factorScore(vp.Factors, factors.NameSeasonAvg),
			factorScore(vp.Factors, factors.NameBlowout),
			factorScore(vp.Factors, factors.NameVolume),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return slipID, nil
}

func (s *SQLite) History(limit int) ([]SavedSlip, error) {
	return s.querySlips("SELECT id, run_id, saved_at, target_decimal, combined_odds, avg_value_score, has_correlated, bookmaker_filter, outcome, stake, profit_loss, result_at FROM saved_slips ORDER BY saved_at DESC LIMIT ?", limit)
}

func (s *SQLite) UnresolvedSlips() ([]SavedSlip, error) {
	return s.querySlips("SELECT id, run_id, saved_at, target_decimal, combined_odds, avg_value_score, has_correlated, bookmaker_filter, outcome, stake, profit_loss, result_at FROM saved_slips WHERE outcome IS NULL ORDER BY saved_at")
}

func (s *SQLite) querySlips(query string, args ...any) ([]SavedSlip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query slips: %w", err)
	}
	defer rows.Close()

	var slips []SavedSlip
	for rows.Next() {
		var sl SavedSlip
		var runID sql.NullInt64
		var stake, pnl sql.NullFloat64
		var filter, outcome, resultAt sql.NullString
		var correlated int
		if err := rows.Scan(&sl.ID, &runID, &sl.SavedAt, &sl.TargetOdds, &sl.CombinedOdds,
			&sl.AvgValueScore, &correlated, &filter, &outcome, &stake, &pnl, &resultAt); err != nil {
			return nil, fmt.Errorf("scan slip: %w", err)
		}
		sl.RunID = runID.Int64
		sl.Correlated = correlated != 0
		sl.BookmakerFilter = filter.String
		sl.Outcome = outcome.String
		sl.Stake = stake.Float64
		sl.ProfitLoss = pnl.Float64
		sl.ResultAt = resultAt.String
		slips = append(slips, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range slips {
		legs, err := s.slipLegs(slips[i].ID)
		if err != nil {
			return nil, err
		}
		slips[i].Legs = legs
	}
	return slips, nil
}

func (s *SQLite) slipLegs(slipID int64) ([]SavedLeg, error) {
	rows, err := s.db.Query(`SELECT id, slip_id, player_name, market, market_label,
		line, side, odds, bookmaker, is_preferred, value_score,
		score_consistency, score_vs_opponent, score_home_away, score_injury,
		score_team_context, score_season_avg, score_blowout_risk, score_volume_context,
		leg_result
		FROM slip_legs WHERE slip_id = ? ORDER BY id`, slipID)
	if err != nil {
		return nil, fmt.Errorf("query legs: %w", err)
	}
	defer rows.Close()

	var legs []SavedLeg
	for rows.Next() {
		var leg SavedLeg
		var preferred int
		var result sql.NullString
		scores := make([]sql.NullFloat64, 8)
		if err := rows.Scan(&leg.ID, &leg.SlipID, &leg.PlayerName, &leg.Market,
			&leg.MarketLabel, &leg.Line, &leg.Side, &leg.Odds, &leg.Bookmaker,
			&preferred, &leg.ValueScore,
			&scores[0], &scores[1], &scores[2], &scores[3],
			&scores[4], &scores[5], &scores[6], &scores[7],
			&result); err != nil {
			return nil, fmt.Errorf("scan leg: %w", err)
		}
		leg.Preferred = preferred != 0
		leg.Result = result.String
		leg.FactorScores = map[string]float64{
			factors.NameConsistency: scores[0].Float64,
			"vs Opponent":           scores[1].Float64,
			factors.NameHomeAway:    scores[2].Float64,
			factors.NameInjury:      scores[3].Float64,
			factors.NameTeamContext: scores[4].Float64,
			factors.NameSeasonAvg:   scores[5].Float64,
			factors.NameBlowout:     scores[6].Float64,
			factors.NameVolume:      scores[7].Float64,
		}
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}

func (s *SQLite) RecordOutcome(slipID int64, outcome string, stake float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pnl float64
	if stake > 0 {
		switch outcome {
		case OutcomeWin:
			var combined float64
			if err := s.db.QueryRow("SELECT combined_odds FROM saved_slips WHERE id = ?", slipID).Scan(&combined); err != nil {
				return fmt.Errorf("lookup slip %d: %w", slipID, err)
			}
			pnl = stake*combined - stake
		case OutcomeLoss:
			pnl = -stake
		}
	}

	_, err := s.db.Exec(`UPDATE saved_slips
		SET outcome=?, stake=?, profit_loss=?, result_at=? WHERE id=?`,
		outcome, stake, pnl, time.Now().UTC().Format(time.RFC3339), slipID)
	return err
}

func (s *SQLite) RecordLegResult(legID int64, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE slip_legs SET leg_result=? WHERE id=?", result, legID)
	return err
}

func (s *SQLite) GetAnalytics() (*Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Analytics{}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM saved_slips WHERE outcome IS NOT NULL").Scan(&a.TotalSlips); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM saved_slips WHERE outcome = ?", OutcomeWin).Scan(&a.Wins); err != nil {
		return nil, err
	}
	if a.TotalSlips > 0 {
		a.WinRate = float64(a.Wins) / float64(a.TotalSlips)
	}

	var pnl sql.NullFloat64
	if err := s.db.QueryRow("SELECT SUM(profit_loss) FROM saved_slips WHERE profit_loss IS NOT NULL").Scan(&pnl); err != nil {
		return nil, err
	}
	a.TotalPnL = pnl.Float64

	rows, err := s.db.Query(`SELECT market_label, COUNT(*) AS total,
		SUM(CASE WHEN leg_result = 'HIT' THEN 1 ELSE 0 END) AS hits
		FROM slip_legs WHERE leg_result IS NOT NULL
		GROUP BY market_label ORDER BY hits * 1.0 / COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m MarketStats
		if err := rows.Scan(&m.MarketLabel, &m.Total, &m.Hits); err != nil {
			return nil, err
		}
		a.ByMarket = append(a.ByMarket, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	calRows, err := s.db.Query(`SELECT CAST(score_consistency / 10 AS INTEGER) * 10 AS bucket,
		COUNT(*) AS total,
		SUM(CASE WHEN leg_result = 'HIT' THEN 1 ELSE 0 END) AS hits
		FROM slip_legs
		WHERE leg_result IS NOT NULL AND score_consistency IS NOT NULL
		GROUP BY bucket ORDER BY bucket`)
	if err != nil {
		return nil, err
	}
	defer calRows.Close()
	for calRows.Next() {
		var b CalibrationBucket
		if err := calRows.Scan(&b.Bucket, &b.Total, &b.Hits); err != nil {
			return nil, err
		}
		a.Calibration = append(a.Calibration, b)
	}
	return a, calRows.Err()
}

func (s *SQLite) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
