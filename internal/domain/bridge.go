package domain

// Bridge links a lock/burn transaction on the source chain to the minting
// transaction that issued the bridged asset on the destination chain.
// MintingTx.Date is always strictly later than LockBurnTx.Date and the gap
// never exceeds the detection window.
type Bridge struct {
	ID              int         `json:"id"`
	LockBurnTx      Transaction `json:"lockBurnTx"`
	MintingTx       Transaction `json:"mintingTx"`
	LockBurnWallet  string      `json:"lockBurnWallet"` // output address of the lock/burn leg
	MintingWallet   string      `json:"mintingWallet"`  // input address of the minting leg
	TimeDiffMinutes float64     `json:"timeDiffMinutes"`
}
