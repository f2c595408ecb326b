// Package server exposes the grading engine over HTTP for local frontends.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/refresh"
	"PropScout/internal/results"
	"PropScout/internal/slips"
	"PropScout/internal/store"
)

// Server holds the HTTP handler graph.
type Server struct {
	cfg      *config.Config
	pipeline *refresh.Pipeline
	builder  *slips.Builder
	checker  *results.Checker
	db       store.Store
	season   string
}

// New creates the server.
func New(cfg *config.Config, pipeline *refresh.Pipeline, builder *slips.Builder, checker *results.Checker, db store.Store, season string) *Server {
	return &Server{cfg: cfg, pipeline: pipeline, builder: builder, checker: checker, db: db, season: season}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/tonight", s.handleTonight)
		r.Get("/props", s.handleProps)
		r.Get("/bookmakers", s.handleBookmakers)
		r.Get("/slips", s.handleSlips)
		r.Post("/slips/save", s.handleSaveSlip)
		r.Patch("/slips/{id}/outcome", s.handleOutcome)
		r.Get("/history", s.handleHistory)
		r.Get("/analytics", s.handleAnalytics)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/refresh/status", s.handleRefreshStatus)
		r.Post("/results/check", s.handleResultsCheck)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ParseOdds accepts fractional ("5/1"), American ("+400", "-150"), and plain
// decimal odds strings, returning decimal odds.
func ParseOdds(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	zero := decimal.Decimal{}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return zero, fmt.Errorf("invalid fractional odds %q", s)
		}
		return decimal.NewFromFloat(n/d + 1).Round(4), nil
	}
	if strings.HasPrefix(s, "+") {
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil || v <= 0 {
			return zero, fmt.Errorf("invalid american odds %q", s)
		}
		return decimal.NewFromFloat(v/100 + 1).Round(4), nil
	}
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil || v <= 0 {
			return zero, fmt.Errorf("invalid american odds %q", s)
		}
		return decimal.NewFromFloat(100/v + 1).Round(4), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return zero, fmt.Errorf("invalid odds %q", s)
	}
	if v <= 1.0 {
		return zero, fmt.Errorf("decimal odds must be > 1.0, got %v", v)
	}
	return decimal.NewFromFloat(v).Round(4), nil
}

func (s *Server) handleTonight(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	type gameResp struct {
		GameID   string `json:"game_id"`
		HomeTeam string `json:"home_team"`
		AwayTeam string `json:"away_team"`
		Matchup  string `json:"matchup"`
		GameDate string `json:"game_date"`
	}
	out := []gameResp{}
	if snap != nil {
		for _, g := range snap.Games {
			out = append(out, gameResp{
				GameID:   g.GameID,
				HomeTeam: g.HomeTeam,
				AwayTeam: g.AwayTeam,
				Matchup:  g.AwayTeam + " @ " + g.HomeTeam,
				GameDate: g.GameDate,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type propResp struct {
	PlayerName       string              `json:"player_name"`
	PlayerID         int                 `json:"player_id"`
	Market           string              `json:"market"`
	MarketLabel      string              `json:"market_label"`
	Line             float64             `json:"line"`
	Side             string              `json:"side"`
	Odds             string              `json:"odds"`
	Bookmaker        string              `json:"bookmaker"`
	Preferred        bool                `json:"preferred"`
	ValueScore       float64             `json:"value_score"`
	Recommendation   string              `json:"recommendation"`
	Game             string              `json:"game"`
	GameDate         string              `json:"game_date"`
	SuspiciousLine   bool                `json:"suspicious_line"`
	SuspiciousReason string              `json:"suspicious_reason,omitempty"`
	Factors          []model.FactorResult `json:"factors"`
}

func propToResp(vp *model.ValuedProp) propResp {
	g := vp.Prop.Game
	return propResp{
		PlayerName:       vp.Prop.PlayerName,
		PlayerID:         vp.Prop.NBAPlayerID,
		Market:           string(vp.Prop.Market),
		MarketLabel:      vp.Prop.Market.Label(),
		Line:             vp.Prop.Line,
		Side:             string(vp.Side),
		Odds:             vp.Prop.Odds(vp.Side).StringFixed(2),
		Bookmaker:        vp.Prop.Bookmaker,
		Preferred:        vp.Prop.Preferred,
		ValueScore:       vp.ValueScore,
		Recommendation:   vp.Recommendation,
		Game:             g.AwayTeam + " @ " + g.HomeTeam,
		GameDate:         g.GameDate,
		SuspiciousLine:   vp.SuspiciousLine,
		SuspiciousReason: vp.SuspiciousReason,
		Factors:          vp.Factors,
	}
}

func (s *Server) handleProps(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusOK, []propResp{})
		return
	}

	q := r.URL.Query()
	minScore, _ := strconv.ParseFloat(q.Get("min_score"), 64)
	game := strings.ToUpper(q.Get("game"))
	player := strings.ToLower(q.Get("player"))
	bookmaker := q.Get("bookmaker")
	market := strings.ToLower(q.Get("market"))
	side := strings.ToLower(q.Get("side"))

	out := []propResp{}
	for _, vp := range snap.Props {
		if vp.ValueScore < minScore {
			continue
		}
		g := vp.Prop.Game
		if game != "" && !strings.Contains(strings.ToUpper(g.AwayTeam+" @ "+g.HomeTeam), game) {
			continue
		}
		if player != "" && !strings.Contains(strings.ToLower(vp.Prop.PlayerName), player) {
			continue
		}
		if bookmaker != "" {
			if strings.EqualFold(bookmaker, s.cfg.Providers.PreferredBookmaker) {
				if !vp.Prop.Preferred {
					continue
				}
			} else if !strings.EqualFold(vp.Prop.Bookmaker, bookmaker) {
				continue
			}
		}
		if market != "" && !strings.Contains(strings.ToLower(vp.Prop.Market.Label()), market) {
			continue
		}
		if side != "" && string(vp.Side) != side {
			continue
		}
		out = append(out, propToResp(vp))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ValueScore > out[j].ValueScore })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBookmakers(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	books := map[string]bool{}
	hasPreferred := false
	if snap != nil {
		for _, vp := range snap.Props {
			if vp.Prop.Bookmaker != "" {
				books[vp.Prop.Bookmaker] = true
			}
			if vp.Prop.Preferred {
				hasPreferred = true
			}
		}
	}
	names := make([]string, 0, len(books))
	for b := range books {
		names = append(names, b)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names)+1)
	if hasPreferred && !books[s.cfg.Providers.PreferredBookmaker] {
		out = append(out, s.cfg.Providers.PreferredBookmaker)
	}
	out = append(out, names...)
	writeJSON(w, http.StatusOK, out)
}

// buildSlips parses the shared slip query parameters and runs the builder.
func (s *Server) buildSlips(q map[string]string) ([]model.BetSlip, error) {
	snap := s.pipeline.Snapshot()
	if snap == nil || len(snap.Props) == 0 {
		return nil, fmt.Errorf("no graded props: POST /api/refresh first")
	}

	target := decimal.NewFromFloat(5.0)
	if odds := q["odds"]; odds != "" {
		var err error
		target, err = ParseOdds(odds)
		if err != nil {
			return nil, err
		}
	}

	opts := slips.Options{Bookmaker: q["bookmaker"]}
	if legs := q["legs"]; legs != "" {
		n, err := strconv.Atoi(legs)
		if err != nil {
			return nil, fmt.Errorf("invalid legs %q", legs)
		}
		opts.Legs = n
	}
	if ms := q["min_score"]; ms != "" {
		v, err := strconv.ParseFloat(ms, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_score %q", ms)
		}
		opts.MinScore = v
	}

	return s.builder.Build(snap.Props, target, opts), nil
}

func queryMap(r *http.Request, keys ...string) map[string]string {
	q := r.URL.Query()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = q.Get(k)
	}
	return out
}

type slipResp struct {
	CombinedOdds string     `json:"combined_odds"`
	TargetOdds   string     `json:"target_odds"`
	AvgValue     float64    `json:"avg_value_score"`
	Score        float64    `json:"score"`
	Correlated   bool       `json:"has_correlated_legs"`
	Summary      string     `json:"summary"`
	Legs         []propResp `json:"legs"`
}

func slipToResp(slip *model.BetSlip) slipResp {
	legs := make([]propResp, len(slip.Legs))
	for i, leg := range slip.Legs {
		legs[i] = propToResp(leg.Prop)
	}
	return slipResp{
		CombinedOdds: slip.CombinedOdds.StringFixed(2),
		TargetOdds:   slip.TargetOdds.StringFixed(2),
		AvgValue:     slip.TotalValue,
		Score:        slip.Score,
		Correlated:   slip.Correlated,
		Summary:      slip.Summary,
		Legs:         legs,
	}
}

func (s *Server) handleSlips(w http.ResponseWriter, r *http.Request) {
	built, err := s.buildSlips(queryMap(r, "odds", "legs", "min_score", "bookmaker"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]slipResp, len(built))
	for i := range built {
		out[i] = slipToResp(&built[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type saveSlipRequest struct {
	Odds      string  `json:"odds"`
	SlipIndex int     `json:"slip_index"`
	Bookmaker string  `json:"bookmaker"`
	Legs      int     `json:"legs"`
	MinScore  float64 `json:"min_score"`
}

func (s *Server) handleSaveSlip(w http.ResponseWriter, r *http.Request) {
	var req saveSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q := map[string]string{"odds": req.Odds, "bookmaker": req.Bookmaker}
	if req.Legs > 0 {
		q["legs"] = strconv.Itoa(req.Legs)
	}
	if req.MinScore > 0 {
		q["min_score"] = strconv.FormatFloat(req.MinScore, 'f', -1, 64)
	}
	built, err := s.buildSlips(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SlipIndex < 0 || req.SlipIndex >= len(built) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("slip index %d out of range (%d slips)", req.SlipIndex, len(built)))
		return
	}

	var runID int64
	if id, ok := s.db.LatestRunID(); ok {
		runID = id
	}
	slipID, err := s.db.SaveSlip(&built[req.SlipIndex], runID, req.Bookmaker)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slip_id": slipID, "saved": true})
}

type outcomeRequest struct {
	Outcome    string            `json:"outcome"`
	Stake      float64           `json:"stake"`
	LegResults map[string]string `json:"leg_results"`
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	slipID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slip id")
		return
	}

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Outcome {
	case store.OutcomeWin, store.OutcomeLoss, store.OutcomeVoid:
	default:
		writeError(w, http.StatusBadRequest, "outcome must be WIN, LOSS, or VOID")
		return
	}

	if err := s.db.RecordOutcome(slipID, req.Outcome, req.Stake); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for legIDStr, result := range req.LegResults {
		if result != store.LegHit && result != store.LegMiss {
			continue
		}
		legID, err := strconv.ParseInt(legIDStr, 10, 64)
		if err != nil {
			continue
		}
		if err := s.db.RecordLegResult(legID, result); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true, "slip_id": slipID})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	history, err := s.db.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []store.SavedSlip{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.db.GetAnalytics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	if season == "" {
		season = s.season
	}
	if !s.pipeline.Start(season) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status": "already_running",
			"state":  s.pipeline.State(),
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.State())
}

func (s *Server) handleResultsCheck(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("game_date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "game_date query parameter required (YYYY-MM-DD)")
		return
	}
	summary, err := s.checker.CheckDate(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
