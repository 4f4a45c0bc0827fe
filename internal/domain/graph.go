package domain

// NodeKind discriminates the node variants handed to the renderer.
type NodeKind string

const (
	NodeWallet        NodeKind = "wallet"
	NodeMultiInputHub NodeKind = "multi-input-hub"
	NodeExchange      NodeKind = "exchange"
	NodeExchangeLabel NodeKind = "exchange-label"
)

// EdgeKind classifies how an edge was produced and how it should be styled.
type EdgeKind string

const (
	EdgeSingle          EdgeKind = "single"
	EdgeGrouped         EdgeKind = "grouped"
	EdgeMultiInputLine  EdgeKind = "multi-input-line"
	EdgeMultiInputFinal EdgeKind = "multi-input-final"
	EdgeDualIntegration EdgeKind = "dual-integration"
	EdgeBridge          EdgeKind = "bridge"
	EdgeVASPConnection  EdgeKind = "vasp-connection"
)

// Node is one renderable graph entity. Wallet nodes are keyed by normalized
// address, so identical addresses across transactions collapse to one node.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Address     string   `json:"address"`
	Color       string   `json:"color"`
	BorderColor string   `json:"borderColor"`
	BorderWidth int      `json:"borderWidth"`
	Width       int      `json:"width"`
	Stage       string   `json:"stage"`
	Kind        NodeKind `json:"kind"`
}

// Edge is one renderable connection between two nodes.
type Edge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Label    string   `json:"label"`
	Amount   float64  `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Date     string   `json:"date,omitempty"`
	TxCount  int      `json:"txCount,omitempty"`
	Kind     EdgeKind `json:"kind"`
}

// Stats summarises one build. Currencies holds the sorted distinct currency
// codes present in the filtered transaction set, not the unfiltered superset.
type Stats struct {
	NodeCount  int      `json:"nodeCount"`
	EdgeCount  int      `json:"edgeCount"`
	Currencies []string `json:"currencies"`
}

// Graph is the deduplicated node set and ordered edge list of one build.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}
