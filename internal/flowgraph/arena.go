package flowgraph

import "github.com/avdeenko/cryptoflow/backend/internal/domain"

// nodeArena is a flat store of nodes plus an index from natural key (wallet
// address, hub ID, exchange ID) to position. The first transaction
// referencing an address determines that node's appearance; later writers
// are ignored.
type nodeArena struct {
	nodes []domain.Node
	index map[string]int
}

func newNodeArena() *nodeArena {
	return &nodeArena{index: make(map[string]int)}
}

// add inserts the node unless its ID is already present. It reports whether
// the node was inserted.
func (a *nodeArena) add(node domain.Node) bool {
	if _, exists := a.index[node.ID]; exists {
		return false
	}
	a.index[node.ID] = len(a.nodes)
	a.nodes = append(a.nodes, node)
	return true
}

func (a *nodeArena) has(id string) bool {
	_, ok := a.index[id]
	return ok
}

func (a *nodeArena) len() int {
	return len(a.nodes)
}
