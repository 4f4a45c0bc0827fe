package extract

import (
	"strings"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

// scanState tracks where the classifier is inside a sheet.
type scanState int

const (
	// stateSeeking: outside any advanced-transaction section; rows are ignored.
	stateSeeking scanState = iota
	// stateExchangeScan: section marker seen, waiting for an exchange header.
	stateExchangeScan
	// stateInExchange: exchange known, no stage selected yet.
	stateInExchange
	// stateInStage: exchange and stage known; qualifying rows are data.
	stateInStage
)

// rowClass is the classifier's verdict for a single row.
type rowClass int

const (
	rowIgnored rowClass = iota
	rowSectionStart
	rowSectionEnd
	rowExchangeHeader
	rowStageHeader
	rowColumnHeader
	rowData
)

// stopWords bound a section: any first cell containing one of these ends the
// current advanced-transaction section.
var stopWords = []string{
	"subset of assets",
	"aggregate incident",
	"beneficiary vasp",
	"distribution of sent",
}

const (
	sectionMarkerA = "advanced transaction"
	sectionMarkerB = "layering"
)

// classifier is the section-scanning state machine. One instance walks the
// rows of a single sheet top to bottom.
type classifier struct {
	state    scanState
	exchange string
	stage    domain.Stage
}

// step classifies row and advances the scanner. The verdict plus the current
// exchange/stage fields are everything the extractor needs.
func (c *classifier) step(row []string) rowClass {
	first := strings.TrimSpace(cell(row, 0))
	lower := strings.ToLower(first)

	if strings.Contains(lower, sectionMarkerA) && strings.Contains(lower, sectionMarkerB) {
		c.state = stateExchangeScan
		c.exchange = ""
		c.stage = ""
		return rowSectionStart
	}

	if containsAny(lower, stopWords) {
		c.state = stateSeeking
		c.exchange = ""
		c.stage = ""
		return rowSectionEnd
	}

	switch c.state {
	case stateSeeking:
		return rowIgnored
	case stateExchangeScan:
		return c.scanExchangeHeader(row, first, lower)
	default:
		return c.scanStageOrData(row, first, lower)
	}
}

// scanExchangeHeader recognises a new exchange-name header: a non-trivial
// first cell with empty second and third cells. Stage keywords and the ID
// column header never name an exchange.
func (c *classifier) scanExchangeHeader(row []string, first, lower string) rowClass {
	if first == "" || len(first) <= 2 || cell(row, 1) != "" || cell(row, 2) != "" {
		return rowIgnored
	}
	if strings.Contains(lower, "layering") || strings.Contains(lower, "placement") || first == idHeaderCell {
		return rowIgnored
	}
	c.exchange = first
	c.stage = ""
	c.state = stateInExchange
	return rowExchangeHeader
}

// scanStageOrData handles rows while an exchange is active. Stage keywords are
// checked in precedence order; "placement"+"dual" must win over the bare
// "placement" that maps to pre-layering.
func (c *classifier) scanStageOrData(row []string, first, lower string) rowClass {
	switch {
	case strings.Contains(lower, "placement") && strings.Contains(lower, "dual"):
		return c.enterStage(domain.StageDualIntegration)
	case strings.Contains(lower, "pre-layering") || strings.Contains(lower, "placement"):
		return c.enterStage(domain.StagePreLayering)
	case strings.Contains(lower, "layering non-vasp"):
		return c.enterStage(domain.StageLayeringNonVASP)
	case strings.Contains(lower, "layering") && strings.Contains(lower, "vasp"):
		return c.enterStage(domain.StageLayeringVASP)
	}

	if first == idHeaderCell || first == "ID" {
		return rowColumnHeader
	}
	if c.state != stateInStage {
		return rowIgnored
	}
	return rowData
}

func (c *classifier) enterStage(stage domain.Stage) rowClass {
	c.stage = stage
	c.state = stateInStage
	return rowStageHeader
}

const idHeaderCell = "№/ID"

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
