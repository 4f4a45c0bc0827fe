package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

func sampleRows() [][]string {
	return [][]string{
		{"CASE-0077", "", "", "Country: Estonia", "Broker: AxiTrade"},
		{"Jane Tamm – victim statement on file"},
		{},
		{"Advanced transaction analysis – Layering"},
		{"Binance"},
		{"Placement / Pre-layering"},
		{"№/ID", "Date", "Input address", "Hash", "Output address", "Amount", "Currency", "Chain analysis", "Comment"},
		{"1", "3.15.2024 10:00:00", "0xAAAA00000000", "0xhash1", "0xBBBB00000000", "1,234.50", "USDT", "Direct transfer", ""},
		{"2", "3.15.2024 10:30:00", "short", "0xhash2", "0xCCCC00000000", "10", "USDT", "", ""},
		{"Layering VASP"},
		{"3", "3.15.2024 11:00:00", "0xDDDD00000000", "0xhash3", "0xEEEE00000000", "0.5", "BTC", "", "Deposit to Kraken"},
		{"Subset of assets traced to beneficiary"},
		{"4", "3.15.2024 12:00:00", "0xFFFF00000000", "0xhash4", "0xABCD00000000", "1", "ETH", "", ""},
	}
}

func TestParseSheetExtractsCaseMetadata(t *testing.T) {
	result := ParseSheet(sampleRows())

	assert.Equal(t, "CASE-0077", result.Dataset.CaseID)
	assert.Equal(t, "Estonia", result.Dataset.Country)
	assert.Equal(t, "AxiTrade", result.Dataset.Broker)
	assert.Equal(t, "Jane Tamm", result.Dataset.ClientName)
}

func TestParseSheetBucketsTransactions(t *testing.T) {
	result := ParseSheet(sampleRows())

	require.Equal(t, []string{"Binance"}, result.Dataset.ExchangeOrder)
	buckets := result.Dataset.Exchanges["Binance"]
	require.NotNil(t, buckets)

	// Row 2 has a short input cell and is filtered out; row 4 falls after the
	// section ended.
	require.Len(t, buckets[domain.StagePreLayering], 1)
	require.Len(t, buckets[domain.StageLayeringVASP], 1)
	assert.Equal(t, 2, buckets.TransactionCount())

	tx := buckets[domain.StagePreLayering][0]
	assert.Equal(t, "1", tx.ID)
	assert.Equal(t, "0xaaaa00000000", tx.Input)
	assert.Equal(t, "0xAAAA00000000", tx.InputDisplay)
	assert.Equal(t, "0xbbbb00000000", tx.Output)
	assert.Equal(t, 1234.5, tx.Amount)
	assert.Equal(t, "USDT", tx.Currency)
	assert.Equal(t, domain.StagePreLayering, tx.Stage)

	vasp := buckets[domain.StageLayeringVASP][0]
	assert.Equal(t, "Deposit to Kraken", vasp.Comment)
}

func TestParseSheetCollectsCurrencies(t *testing.T) {
	result := ParseSheet(sampleRows())
	assert.Equal(t, []string{"BTC", "USDT"}, result.Currencies)
}

func TestParseSheetEmptyRows(t *testing.T) {
	result := ParseSheet(nil)
	assert.Empty(t, result.Dataset.Exchanges)
	assert.Empty(t, result.Currencies)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "1,234.50", want: 1234.5},
		{raw: " 10 000.25 ", want: 10000.25},
		{raw: "0.000001", want: 0.000001},
		{raw: "", want: 0},
		{raw: "n/a", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAmount(tt.raw))
		})
	}
}

func TestParseHeaderRowsWithoutLabels(t *testing.T) {
	rows := [][]string{
		{"CASE-0001"},
		{"Client Only"},
	}
	result := ParseSheet(rows)
	assert.Equal(t, "CASE-0001", result.Dataset.CaseID)
	assert.Empty(t, result.Dataset.Country)
	assert.Empty(t, result.Dataset.Broker)
	assert.Equal(t, "Client Only", result.Dataset.ClientName)
}
