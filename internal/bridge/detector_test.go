package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

func TestExpandIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "single", raw: "7", want: []int{7}},
		{name: "range", raw: "3-5", want: []int{3, 4, 5}},
		{name: "range and single", raw: "3-5,9", want: []int{3, 4, 5, 9}},
		{name: "whitespace", raw: " 2 , 4 ", want: []int{2, 4}},
		{name: "unparsable", raw: "abc", want: nil},
		{name: "empty", raw: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandIDs(tt.raw))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "dotted",
			raw:  "3.15.2024 10:30:00",
			want: time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "slashed",
			raw:  "3/15/2024 10:30:00",
			want: time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "iso date",
			raw:  "2024-03-15",
			want: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "not a date", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func lockBurnTx(id, date, output string) domain.Transaction {
	return domain.Transaction{
		ID:            id,
		Date:          date,
		Input:         "0xsource000000",
		Output:        output,
		ChainAnalysis: "Lock on bridge contract",
	}
}

func mintingTx(id, date, input string) domain.Transaction {
	return domain.Transaction{
		ID:            id,
		Date:          date,
		Input:         input,
		Output:        "0xdest00000000",
		ChainAnalysis: "Mint on destination chain",
	}
}

func TestDetectorPairsWithinWindow(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 10:45:00", "0xmintin00000"),
	})

	require.Len(t, bridges, 1)
	assert.Equal(t, 1, bridges[0].ID)
	assert.Equal(t, "0xlockout0000", bridges[0].LockBurnWallet)
	assert.Equal(t, "0xmintin00000", bridges[0].MintingWallet)
	assert.InDelta(t, 45.0, bridges[0].TimeDiffMinutes, 0.001)
}

func TestDetectorRejectsOutsideWindow(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 13:30:00", "0xmintin00000"),
	})
	assert.Empty(t, bridges)
}

func TestDetectorCustomWindow(t *testing.T) {
	d := Detector{Window: 30 * time.Minute}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 10:45:00", "0xmintin00000"),
	})
	assert.Empty(t, bridges)
}

func TestDetectorRequiresMintingAfterLockBurn(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 09:30:00", "0xmintin00000"),
		mintingTx("1", "3.15.2024 10:00:00", "0xmintsame000"),
	})
	assert.Empty(t, bridges)
}

func TestDetectorPicksNearestMinting(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 10:30:00", "0xfarther0000"),
		mintingTx("1", "3.15.2024 10:10:00", "0xnearest0000"),
	})

	require.Len(t, bridges, 1)
	assert.Equal(t, "0xnearest0000", bridges[0].MintingWallet)
}

func TestDetectorConsumesMintingOnce(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockA000000"),
		lockBurnTx("1", "3.15.2024 10:05:00", "0xlockB000000"),
		mintingTx("1", "3.15.2024 10:20:00", "0xmintin00000"),
	})

	require.Len(t, bridges, 1)
	assert.Equal(t, "0xlockA000000", bridges[0].LockBurnWallet)
}

func TestDetectorMatchesExpandedRanges(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("3-5", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("4", "3.15.2024 10:20:00", "0xmintin00000"),
	})

	require.Len(t, bridges, 1)
	assert.Equal(t, 4, bridges[0].ID)
}

func TestDetectorDedupesWalletPairs(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "3.15.2024 10:00:00", "0xlockout0000"),
		mintingTx("1", "3.15.2024 10:10:00", "0xmintin00000"),
		lockBurnTx("2", "3.15.2024 11:00:00", "0xlockout0000"),
		mintingTx("2", "3.15.2024 11:10:00", "0xmintin00000"),
	})

	require.Len(t, bridges, 1)
	assert.Equal(t, 1, bridges[0].ID)
}

func TestDetectorIgnoresUnparsableDates(t *testing.T) {
	d := Detector{}
	bridges := d.Detect([]domain.Transaction{
		lockBurnTx("1", "when it happened", "0xlockout0000"),
		mintingTx("1", "3.15.2024 10:10:00", "0xmintin00000"),
	})
	assert.Empty(t, bridges)
}
