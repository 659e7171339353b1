package searcher

// table is the sequential engine's score table: an arena of nodes addressed
// by index. Evicted slots are reused.
type table struct {
	nodes []*scoreNode
	free  []int
	live  int
}

func (t *table) insert(n *scoreNode) int {
	t.live++
	if last := len(t.free) - 1; last >= 0 {
		i := t.free[last]
		t.free = t.free[:last]
		t.nodes[i] = n
		return i
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// get returns nil for an index that was never issued or has been evicted.
func (t *table) get(i int) *scoreNode {
	if i < 0 || i >= len(t.nodes) {
		return nil
	}
	return t.nodes[i]
}

func (t *table) evict(i int) {
	if t.nodes[i] == nil {
		return
	}
	t.nodes[i] = nil
	t.free = append(t.free, i)
	t.live--
}

func (t *table) size() int {
	return t.live
}
