// Package extract turns the raw rows of one spreadsheet sheet into a typed
// case dataset. Rows that fail structural checks are dropped silently: source
// sheets are expected to contain headers, separators and notes between the
// actual transaction rows.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

const minAddressLength = 10

var (
	countryLabelRegex = regexp.MustCompile(`Country:?`)
	brokerLabelRegex  = regexp.MustCompile(`Broker:?`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// SheetResult is the outcome of parsing one sheet: the dataset plus the
// currencies observed while extracting, sorted. The currency inventory is
// returned rather than accumulated in shared state so repeated parses stay
// independent.
type SheetResult struct {
	Dataset    domain.CaseDataset
	Currencies []string
}

// ParseSheet walks the ordered rows of one sheet and extracts every
// qualifying transaction, grouped by exchange and stage. It never fails:
// malformed rows are a filtering decision, not an error.
func ParseSheet(rows [][]string) SheetResult {
	dataset := domain.CaseDataset{
		Exchanges: make(map[string]domain.StageBuckets),
	}
	currencies := make(map[string]struct{})

	parseHeaderRows(rows, &dataset)

	var c classifier
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		switch c.step(row) {
		case rowExchangeHeader:
			// A repeated exchange name starts fresh buckets, matching the
			// source sheets where a later section supersedes an earlier one.
			if _, seen := dataset.Exchanges[c.exchange]; !seen {
				dataset.ExchangeOrder = append(dataset.ExchangeOrder, c.exchange)
			}
			dataset.Exchanges[c.exchange] = domain.NewStageBuckets()
		case rowData:
			tx, ok := extractTransaction(row, c.stage)
			if !ok {
				continue
			}
			dataset.Exchanges[c.exchange][c.stage] = append(dataset.Exchanges[c.exchange][c.stage], tx)
			if tx.Currency != "" {
				currencies[tx.Currency] = struct{}{}
			}
		}
	}

	return SheetResult{
		Dataset:    dataset,
		Currencies: sortedKeys(currencies),
	}
}

// parseHeaderRows pulls the case metadata out of the two header rows: the
// case ID, labelled Country/Broker cells, and the client name before the
// first dash separator.
func parseHeaderRows(rows [][]string, dataset *domain.CaseDataset) {
	if len(rows) > 0 && len(rows[0]) > 0 {
		dataset.CaseID = rows[0][0]
		limit := len(rows[0])
		if limit > 10 {
			limit = 10
		}
		for i := 0; i < limit; i++ {
			value := rows[0][i]
			if strings.Contains(value, "Country") {
				dataset.Country = strings.TrimSpace(countryLabelRegex.ReplaceAllString(value, ""))
			}
			if strings.Contains(value, "Broker") {
				dataset.Broker = strings.TrimSpace(brokerLabelRegex.ReplaceAllString(value, ""))
			}
		}
	}

	if len(rows) > 1 && cell(rows[1], 0) != "" {
		dataset.ClientName = strings.TrimSpace(beforeDash(rows[1][0]))
	}
}

// extractTransaction builds a Transaction from a qualifying data row. Both
// address cells must survive trimming with at least ten characters; anything
// shorter is a header fragment or note, not an address.
func extractTransaction(row []string, stage domain.Stage) (domain.Transaction, bool) {
	inputDisplay := strings.TrimSpace(cell(row, 2))
	outputDisplay := strings.TrimSpace(cell(row, 4))
	if len(inputDisplay) < minAddressLength || len(outputDisplay) < minAddressLength {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		ID:            cell(row, 0),
		Date:          cell(row, 1),
		Input:         strings.ToLower(inputDisplay),
		InputDisplay:  inputDisplay,
		Hash:          cell(row, 3),
		Output:        strings.ToLower(outputDisplay),
		OutputDisplay: outputDisplay,
		Amount:        parseAmount(cell(row, 5)),
		Currency:      strings.TrimSpace(cell(row, 6)),
		ChainAnalysis: cell(row, 7),
		Comment:       cell(row, 8),
		Stage:         stage,
	}, true
}

// parseAmount strips whitespace and thousands separators before parsing.
// Unparsable amounts degrade to zero rather than rejecting the row.
func parseAmount(raw string) float64 {
	cleaned := whitespaceRegex.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// beforeDash returns the text preceding the first hyphen or en dash.
func beforeDash(s string) string {
	if idx := strings.IndexAny(s, "–-"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
