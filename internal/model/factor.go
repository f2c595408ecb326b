package model

// FactorResult is the output of a single factor function.
type FactorResult struct {
	Name       string
	Score      float64 // 0–100
	Weight     float64 // share of the composite, e.g. 0.38
	Evidence   []string
	Data       map[string]any
	Confidence float64 // 0–1, penalised when the sample is small
}

// Recommendation labels for graded props.
const (
	StrongValue   = "Strong Value"
	GoodValue     = "Good Value"
	MarginalValue = "Marginal Value"
	PoorValue     = "Poor Value"
)

// ValuedProp is a fully graded (prop, side) pair. Immutable once created;
// the slip builder borrows collections of these read-only.
type ValuedProp struct {
	Prop             PlayerProp
	Side             Side
	ValueScore       float64 // 0–100 composite
	Factors          []FactorResult
	Recommendation   string
	SeasonAvg        float64 // primary season average used for the line check
	Opponent         string
	TonightHome      bool
	BackToBack       bool
	SuspiciousLine   bool
	SuspiciousReason string
}
