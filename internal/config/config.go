package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FactorWeights is the configured share of each factor in the composite
// value score. The shares must sum to 1.0.
type FactorWeights struct {
	Consistency float64 `yaml:"consistency"`
	VsOpponent  float64 `yaml:"vs_opponent"`
	HomeAway    float64 `yaml:"home_away"`
	Injury      float64 `yaml:"injury"`
	TeamContext float64 `yaml:"team_context"`
	SeasonAvg   float64 `yaml:"season_avg"`
	BlowoutRisk float64 `yaml:"blowout_risk"`
	Volume      float64 `yaml:"volume_context"`
}

// Sum returns the total of all factor weights.
func (w FactorWeights) Sum() float64 {
	return w.Consistency + w.VsOpponent + w.HomeAway + w.Injury +
		w.TeamContext + w.SeasonAvg + w.BlowoutRisk + w.Volume
}

// MinSamples is the minimum effective sample per factor before its score is
// blended toward neutral.
type MinSamples struct {
	Consistency int `yaml:"consistency"`
	VsOpponent  int `yaml:"vs_opponent"`
	HomeAway    int `yaml:"home_away"`
	SeasonAvg   int `yaml:"season_avg"`
}

// ContextWeights are the relevance multipliers applied by the context
// weighter.
type ContextWeights struct {
	CurrentTeam       float64 `yaml:"current_team"`
	PreviousTeam      float64 `yaml:"previous_team"`
	VsOpponentCurrent float64 `yaml:"vs_opponent_current"`
	VsOpponentLastSzn float64 `yaml:"vs_opponent_last_szn"`
	VsOpponentOlder   float64 `yaml:"vs_opponent_older"`
	B2BTonightB2B     float64 `yaml:"b2b_tonight_b2b"`
	NormalRestB2B     float64 `yaml:"normal_rest_b2b"`
}

// Blowout holds the blowout-risk factor constants.
type Blowout struct {
	SpreadNormaliser   float64 `yaml:"spread_normaliser"`
	RiskCutoff         float64 `yaml:"risk_cutoff"`
	PenaltyUnderdog    float64 `yaml:"penalty_underdog_star"`
	PenaltyFavorite    float64 `yaml:"penalty_favorite_star"`
	PenaltyBench       float64 `yaml:"penalty_bench"`
	PenaltyNonCounting float64 `yaml:"penalty_non_counting"`
}

// Slips holds the slip-builder limits.
type Slips struct {
	MinLegs          int     `yaml:"min_legs"`
	MaxLegs          int     `yaml:"max_legs"`
	OddsTolerance    float64 `yaml:"odds_tolerance"`
	MaxPropsInSearch int     `yaml:"max_props_in_search"`
	MaxSlipsReturned int     `yaml:"max_slips_returned"`
	MinValueScore    float64 `yaml:"min_value_score"`
}

// Config holds all application configuration.
type Config struct {
	// Season in NBA notation, e.g. "2025-26".
	Season string `yaml:"season"`

	Weights   FactorWeights  `yaml:"factor_weights"`
	MinSample MinSamples     `yaml:"min_samples"`
	Context   ContextWeights `yaml:"context_weights"`
	Blowout   Blowout        `yaml:"blowout"`
	Slips     Slips          `yaml:"slips"`

	// Recency weights for the last-N games, most recent first. Normalised
	// at use when fewer games are available.
	RecencyWeights []float64 `yaml:"recency_weights"`

	MinGamesPlayed      int     `yaml:"min_games_played"`
	MinCurrentTeamGames int     `yaml:"min_current_team_games"`
	RoleChangeWindow    int     `yaml:"role_change_window"`
	RoleChangeThreshold float64 `yaml:"role_change_threshold"`
	SuspiciousEasy      float64 `yaml:"suspicious_easy_threshold"`
	SuspiciousHard      float64 `yaml:"suspicious_hard_threshold"`

	Providers struct {
		OddsAPIKey         string        `yaml:"odds_api_key"`
		OddsAPIBaseURL     string        `yaml:"odds_api_base_url"`
		OddsRegions        string        `yaml:"odds_regions"`
		PreferredBookmaker string        `yaml:"preferred_bookmaker"`
		ESPNInjuryURL      string        `yaml:"espn_injury_url"`
		NBAStatsBaseURL    string        `yaml:"nba_stats_base_url"`
		RequestDelay       time.Duration `yaml:"request_delay"`
	} `yaml:"providers"`

	Cache struct {
		Dir            string `yaml:"dir"`
		MonthlyCredits int    `yaml:"monthly_credits"`
		TTL            struct {
			Games      time.Duration `yaml:"games"`
			GameLog    time.Duration `yaml:"game_log"`
			Injuries   time.Duration `yaml:"injuries"`
			Props      time.Duration `yaml:"props"`
			TeamStats  time.Duration `yaml:"team_stats"`
			PlayerTeam time.Duration `yaml:"player_team"`
		} `yaml:"ttl"`
	} `yaml:"cache"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Server struct {
		Addr         string   `yaml:"addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`

	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ResultsCron string `yaml:"results_cron"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.Providers.OddsAPIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("NBA_SEASON"); v != "" {
		cfg.Season = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Season == "" {
		c.Season = CurrentSeason(time.Now())
	}
	if c.Weights == (FactorWeights{}) {
		c.Weights = DefaultWeights()
	}
	if c.MinSample == (MinSamples{}) {
		c.MinSample = MinSamples{Consistency: 5, VsOpponent: 4, HomeAway: 6, SeasonAvg: 10}
	}
	if c.Context == (ContextWeights{}) {
		c.Context = ContextWeights{
			CurrentTeam:       1.00,
			PreviousTeam:      0.15,
			VsOpponentCurrent: 1.00,
			VsOpponentLastSzn: 0.40,
			VsOpponentOlder:   0.05,
			B2BTonightB2B:     1.00,
			NormalRestB2B:     0.30,
		}
	}
	if c.Blowout == (Blowout{}) {
		c.Blowout = Blowout{
			SpreadNormaliser:   20.0,
			RiskCutoff:         0.70,
			PenaltyUnderdog:    0.25,
			PenaltyFavorite:    0.15,
			PenaltyBench:       0.35,
			PenaltyNonCounting: 0.08,
		}
	}
	if c.Slips == (Slips{}) {
		c.Slips = Slips{
			MinLegs:          2,
			MaxLegs:          6,
			OddsTolerance:    0.20,
			MaxPropsInSearch: 40,
			MaxSlipsReturned: 5,
			MinValueScore:    50.0,
		}
	}
	if len(c.RecencyWeights) == 0 {
		c.RecencyWeights = []float64{0.20, 0.18, 0.15, 0.12, 0.10, 0.08, 0.06, 0.04, 0.04, 0.03}
	}
	if c.MinGamesPlayed == 0 {
		c.MinGamesPlayed = 5
	}
	if c.MinCurrentTeamGames == 0 {
		c.MinCurrentTeamGames = 15
	}
	if c.RoleChangeWindow == 0 {
		c.RoleChangeWindow = 20
	}
	if c.RoleChangeThreshold == 0 {
		c.RoleChangeThreshold = 0.15
	}
	if c.SuspiciousEasy == 0 {
		c.SuspiciousEasy = 0.30
	}
	if c.SuspiciousHard == 0 {
		c.SuspiciousHard = 0.30
	}
	if c.Providers.OddsAPIBaseURL == "" {
		c.Providers.OddsAPIBaseURL = "https://api.the-odds-api.com/v4"
	}
	if c.Providers.OddsRegions == "" {
		c.Providers.OddsRegions = "eu"
	}
	if c.Providers.PreferredBookmaker == "" {
		c.Providers.PreferredBookmaker = "paddypower"
	}
	if c.Providers.ESPNInjuryURL == "" {
		c.Providers.ESPNInjuryURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/injuries"
	}
	if c.Providers.NBAStatsBaseURL == "" {
		c.Providers.NBAStatsBaseURL = "https://stats.nba.com/stats"
	}
	if c.Providers.RequestDelay == 0 {
		c.Providers.RequestDelay = 600 * time.Millisecond
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Cache.MonthlyCredits == 0 {
		c.Cache.MonthlyCredits = 500
	}
	ttl := &c.Cache.TTL
	if ttl.Games == 0 {
		ttl.Games = 12 * time.Hour
	}
	if ttl.GameLog == 0 {
		ttl.GameLog = 24 * time.Hour
	}
	if ttl.Injuries == 0 {
		ttl.Injuries = 45 * time.Minute
	}
	if ttl.Props == 0 {
		ttl.Props = 2 * time.Hour
	}
	if ttl.TeamStats == 0 {
		ttl.TeamStats = 24 * time.Hour
	}
	if ttl.PlayerTeam == 0 {
		ttl.PlayerTeam = 12 * time.Hour
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/propscout.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 16 * * *" // 16:00 daily, before evening tip-offs
	}
	if c.Schedule.ResultsCron == "" {
		c.Schedule.ResultsCron = "0 0 9 * * *" // grade yesterday's legs each morning
	}
}

// CurrentSeason maps a date to the NBA season that contains it. Seasons run
// October through June, so months before October belong to the prior year's
// season.
func CurrentSeason(now time.Time) string {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// DefaultWeights returns the factor-weight table. The weights must sum to
// 1.0; Validate enforces this for overrides too.
func DefaultWeights() FactorWeights {
	return FactorWeights{
		Consistency: 0.38,
		VsOpponent:  0.20,
		HomeAway:    0.12,
		Injury:      0.13,
		TeamContext: 0.07,
		SeasonAvg:   0.04,
		BlowoutRisk: 0.02,
		Volume:      0.04,
	}
}

// Validate checks all startup-time invariants. Factor weights not summing to
// 1.0 is a programming error, never a runtime condition.
func (c *Config) Validate() error {
	if diff := math.Abs(c.Weights.Sum() - 1.0); diff > 1e-3 {
		return fmt.Errorf("factor weights must sum to 1.0, got %.4f", c.Weights.Sum())
	}
	if c.Slips.MinLegs < 1 || c.Slips.MaxLegs < c.Slips.MinLegs {
		return fmt.Errorf("invalid leg bounds: min=%d max=%d", c.Slips.MinLegs, c.Slips.MaxLegs)
	}
	if c.Slips.OddsTolerance <= 0 {
		return fmt.Errorf("slips.odds_tolerance must be positive")
	}
	if c.MinGamesPlayed < 1 {
		return fmt.Errorf("min_games_played must be at least 1")
	}
	sum := 0.0
	for _, w := range c.RecencyWeights {
		if w < 0 {
			return fmt.Errorf("recency weights must be non-negative")
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-3 {
		return fmt.Errorf("recency weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}
