package domain

import (
	"fmt"
	"strings"
)

// Stage identifies the laundering phase a transaction was recorded under.
type Stage string

const (
	StagePreLayering     Stage = "pre-layering"
	StageLayeringNonVASP Stage = "layering-non-vasp"
	StageLayeringVASP    Stage = "layering-vasp"
	StageDualIntegration Stage = "placement-dual-integration"
)

// AllStages lists the stages in canonical pipeline order. Graph builds iterate
// this order so repeated runs over the same input produce identical output.
var AllStages = []Stage{
	StagePreLayering,
	StageLayeringNonVASP,
	StageLayeringVASP,
	StageDualIntegration,
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StagePreLayering, StageLayeringNonVASP, StageLayeringVASP, StageDualIntegration:
		return true
	}
	return false
}

// ParseStages converts a comma-separated stage list into Stage values.
// An empty input selects all stages.
func ParseStages(csv string) ([]Stage, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return append([]Stage(nil), AllStages...), nil
	}
	var stages []Stage
	for _, part := range strings.Split(csv, ",") {
		stage := Stage(strings.TrimSpace(part))
		if stage == "" {
			continue
		}
		if !stage.Valid() {
			return nil, fmt.Errorf("unknown stage %q", stage)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// Transaction is one extracted transfer row. Instances are immutable once
// extracted and live for the duration of a single graph build.
type Transaction struct {
	ID            string  `json:"id"`   // raw cell value, may be a range like "12-15"
	Date          string  `json:"date"` // raw cell value, parsed lazily where needed
	Input         string  `json:"input"`
	InputDisplay  string  `json:"inputDisplay"`
	Hash          string  `json:"hash"`
	Output        string  `json:"output"`
	OutputDisplay string  `json:"outputDisplay"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ChainAnalysis string  `json:"chainAnalysis"`
	Comment       string  `json:"comment"`
	Stage         Stage   `json:"stage"`
}

// StageBuckets groups one exchange's transactions by stage.
type StageBuckets map[Stage][]Transaction

// NewStageBuckets returns buckets with every stage initialised.
func NewStageBuckets() StageBuckets {
	b := make(StageBuckets, len(AllStages))
	for _, stage := range AllStages {
		b[stage] = nil
	}
	return b
}

// TransactionCount returns the total number of transactions across stages.
func (b StageBuckets) TransactionCount() int {
	total := 0
	for _, txs := range b {
		total += len(txs)
	}
	return total
}

// CaseDataset is the parsed contents of one workbook sheet.
type CaseDataset struct {
	CaseID     string
	Country    string
	Broker     string
	ClientName string
	// Exchanges maps exchange name to its stage buckets. ExchangeOrder
	// preserves the order exchange headers appeared in the sheet.
	Exchanges     map[string]StageBuckets
	ExchangeOrder []string
}
