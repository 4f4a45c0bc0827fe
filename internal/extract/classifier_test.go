package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

func TestClassifierWalksSection(t *testing.T) {
	var c classifier

	assert.Equal(t, rowIgnored, c.step([]string{"random preamble"}))
	assert.Equal(t, rowSectionStart, c.step([]string{"Advanced transaction analysis – Layering"}))

	// Stage keywords never name an exchange.
	assert.Equal(t, rowIgnored, c.step([]string{"Placement overview"}))
	assert.Equal(t, rowIgnored, c.step([]string{"OK"}))

	assert.Equal(t, rowExchangeHeader, c.step([]string{"Binance"}))
	assert.Equal(t, "Binance", c.exchange)

	assert.Equal(t, rowStageHeader, c.step([]string{"Placement / Pre-layering"}))
	assert.Equal(t, domain.StagePreLayering, c.stage)

	assert.Equal(t, rowColumnHeader, c.step([]string{"№/ID", "Date"}))
	assert.Equal(t, rowData, c.step([]string{"1", "3.15.2024 10:00:00", "0xaaaa000000"}))

	assert.Equal(t, rowSectionEnd, c.step([]string{"Subset of assets traced onward"}))
	assert.Equal(t, rowIgnored, c.step([]string{"2", "3.15.2024 10:05:00", "0xbbbb000000"}))
}

func TestClassifierStagePrecedence(t *testing.T) {
	tests := []struct {
		header string
		want   domain.Stage
	}{
		{header: "Placement and Dual Integration", want: domain.StageDualIntegration},
		{header: "Placement / Pre-layering", want: domain.StagePreLayering},
		{header: "Pre-layering transfers", want: domain.StagePreLayering},
		{header: "Layering non-VASP", want: domain.StageLayeringNonVASP},
		{header: "Layering VASP", want: domain.StageLayeringVASP},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			c := classifier{state: stateInExchange, exchange: "Binance"}
			assert.Equal(t, rowStageHeader, c.step([]string{tt.header}))
			assert.Equal(t, tt.want, c.stage)
		})
	}
}

func TestClassifierExchangeHeaderRules(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want rowClass
	}{
		{name: "plain name", row: []string{"Kraken"}, want: rowExchangeHeader},
		{name: "too short", row: []string{"OK"}, want: rowIgnored},
		{name: "second cell occupied", row: []string{"Kraken", "notes"}, want: rowIgnored},
		{name: "id header", row: []string{"№/ID"}, want: rowIgnored},
		{name: "stage keyword", row: []string{"Layering overview"}, want: rowIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classifier{state: stateExchangeScan}
			assert.Equal(t, tt.want, c.step(tt.row))
		})
	}
}
