// Package bridge detects cross-chain bridge relationships: a lock/burn event
// on the source chain paired with the minting event that issued the bridged
// asset on the destination chain, matched on shared transaction IDs inside a
// bounded time window.
package bridge

import (
	"sort"
	"strings"
	"time"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

// DefaultWindow is the maximum lock/burn → minting gap considered a bridge.
const DefaultWindow = 180 * time.Minute

// expandedTx is a transaction paired with one resolved integer ID. A range
// like "12-15" yields four copies sharing all fields but distinct IDs.
type expandedTx struct {
	domain.Transaction
	id    int
	hasID bool
}

// Detector pairs lock/burn and minting transactions. Matching is greedy:
// lock/burn transactions are visited in encounter order and each consumes its
// nearest-in-time candidate immediately, so a minting event claimed by an
// earlier lock/burn is unavailable to later ones. This is the intended
// behavior, not a global minimum-gap assignment.
type Detector struct {
	// Window overrides DefaultWindow when positive.
	Window time.Duration
}

// Detect finds bridges in the transaction list. It is a pure function of its
// input: same transactions in, same bridges out.
func (d Detector) Detect(txs []domain.Transaction) []domain.Bridge {
	window := d.Window
	if window <= 0 {
		window = DefaultWindow
	}

	expanded := expandAll(txs)

	var lockBurns, mintings []expandedTx
	for _, tx := range expanded {
		if isLockBurn(tx.ChainAnalysis) {
			lockBurns = append(lockBurns, tx)
		}
	}
	for _, tx := range expanded {
		if isMinting(tx.ChainAnalysis) {
			mintings = append(mintings, tx)
		}
	}

	consumed := make(map[int]bool, len(mintings))
	var bridges []domain.Bridge

	for _, lockBurn := range lockBurns {
		if !lockBurn.hasID {
			continue
		}
		lockBurnDate, ok := ParseDate(lockBurn.Date)
		if !ok {
			continue
		}

		type candidate struct {
			index int
			tx    expandedTx
			gap   time.Duration
		}
		var candidates []candidate

		for j, minting := range mintings {
			if consumed[j] || !minting.hasID || minting.id != lockBurn.id {
				continue
			}
			mintingDate, ok := ParseDate(minting.Date)
			if !ok {
				continue
			}
			// The minting leg must come strictly after the lock/burn.
			if !mintingDate.After(lockBurnDate) {
				continue
			}
			gap := mintingDate.Sub(lockBurnDate)
			if gap > window {
				continue
			}
			candidates = append(candidates, candidate{index: j, tx: minting, gap: gap})
		}

		if len(candidates) == 0 {
			continue
		}

		// Stable sort keeps encounter order on tied gaps.
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].gap < candidates[b].gap
		})
		best := candidates[0]

		bridges = append(bridges, domain.Bridge{
			ID:              lockBurn.id,
			LockBurnTx:      lockBurn.Transaction,
			MintingTx:       best.tx.Transaction,
			LockBurnWallet:  lockBurn.Output,
			MintingWallet:   best.tx.Input,
			TimeDiffMinutes: best.gap.Minutes(),
		})
		consumed[best.index] = true
	}

	return dedupeByWalletPair(bridges)
}

// expandAll resolves ID ranges. A transaction with no parseable ID produces a
// single copy excluded from matching but still counted in role statistics.
func expandAll(txs []domain.Transaction) []expandedTx {
	var expanded []expandedTx
	for _, tx := range txs {
		ids := ExpandIDs(tx.ID)
		if len(ids) == 0 {
			expanded = append(expanded, expandedTx{Transaction: tx})
			continue
		}
		for _, id := range ids {
			expanded = append(expanded, expandedTx{Transaction: tx, id: id, hasID: true})
		}
	}
	return expanded
}

// dedupeByWalletPair keeps the first bridge per (lockBurnWallet,
// mintingWallet) pair.
func dedupeByWalletPair(bridges []domain.Bridge) []domain.Bridge {
	seen := make(map[string]struct{}, len(bridges))
	unique := bridges[:0]
	for _, b := range bridges {
		key := b.LockBurnWallet + "|" + b.MintingWallet
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, b)
	}
	return unique
}

func isLockBurn(chainAnalysis string) bool {
	lower := strings.ToLower(chainAnalysis)
	return strings.Contains(lower, "lock") || strings.Contains(lower, "burn")
}

func isMinting(chainAnalysis string) bool {
	return strings.Contains(strings.ToLower(chainAnalysis), "mint")
}
