package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"PropScout/internal/model"
	"PropScout/internal/refresh"
	"PropScout/internal/results"
)

// FormatRefreshReport formats the nightly refresh summary and top slips into
// a Telegram message.
func FormatRefreshReport(snap *refresh.Snapshot, slips []model.BetSlip) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🏀 <b>PropScout Nightly Report</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Games tonight: %d\n", len(snap.Games)))
	b.WriteString(fmt.Sprintf("Props graded: %s\n\n", humanize.Comma(int64(len(snap.Props)))))

	if len(slips) == 0 {
		b.WriteString("No slips landed inside the target odds window tonight.")
		return b.String()
	}

	b.WriteString("🎯 <b>Top Slips:</b>\n")
	for i, slip := range slips {
		b.WriteString(fmt.Sprintf("\n<b>%s pick</b> — %s @ %s (avg value %.1f)\n",
			humanize.Ordinal(i+1), pluralLegs(len(slip.Legs)), slip.CombinedOdds.StringFixed(2), slip.TotalValue))
		for _, leg := range slip.Legs {
			p := leg.Prop.Prop
			b.WriteString(fmt.Sprintf("  • %s %s %g %s @%s\n",
				p.PlayerName, strings.ToUpper(string(leg.Side)), p.Line,
				p.Market.Label(), leg.Odds.StringFixed(2)))
		}
		if slip.Correlated {
			b.WriteString("  ⚠ correlated legs (same game)\n")
		}
	}
	return b.String()
}

func pluralLegs(n int) string {
	if n == 1 {
		return "1 leg"
	}
	return fmt.Sprintf("%d legs", n)
}

// FormatTopProps formats the highest-value graded props for a quick glance.
func FormatTopProps(props []*model.ValuedProp, limit int) string {
	ranked := make([]*model.ValuedProp, len(props))
	copy(ranked, props)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ValueScore > ranked[j].ValueScore })

	var b strings.Builder
	b.WriteString("📋 <b>Top Value Props</b>\n\n")
	for i, vp := range ranked {
		if i >= limit {
			break
		}
		marker := ""
		if vp.SuspiciousLine {
			marker = " ⚠"
		}
		b.WriteString(fmt.Sprintf("%2d. %s %s %g %s — score %.1f%s\n",
			i+1, vp.Prop.PlayerName, strings.ToUpper(string(vp.Side)),
			vp.Prop.Line, vp.Prop.Market.Label(), vp.ValueScore, marker))
	}
	if len(props) == 0 {
		b.WriteString("No graded props yet.")
	}
	return b.String()
}

// FormatResultsSummary formats a results-check pass.
func FormatResultsSummary(date string, sum *results.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Results Check</b> | %s\n\n", date))
	b.WriteString(fmt.Sprintf("Legs settled: %d (%d hit / %d miss)\n", sum.Checked, sum.Hit, sum.Miss))
	if sum.NoData > 0 {
		b.WriteString(fmt.Sprintf("No data (DNP or name mismatch): %d\n", sum.NoData))
	}
	b.WriteString(fmt.Sprintf("Slips resolved: %d\n", sum.SlipsResolved))
	return b.String()
}
