package bplus

import "fmt"

// Insert adds (key, rid) to the index. See spec.md §4.3 for the full
// contract: DuplicateKey if key already exists, BadKey if key equals the
// active width's sentinel.
func (t *BPlusTree) Insert(key []byte, rid RID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.w.isSentinel(key) {
		return ErrBadKey
	}

	result, err := t.insertInto(t.rootLocal, false, key, rid)
	if err != nil {
		return err
	}
	if result != nil {
		if err := t.growRoot(result); err != nil {
			return fmt.Errorf("Insert: root growth: %w", err)
		}
	}
	return nil
}

// insertInto is the single recursive descent spec.md §4.3 describes. It
// fetches (pins) the node at current, recurses if current is internal,
// and returns nil ("absorbed") or a splitResult ("split") to its caller.
// current is unpinned, with the correct dirty flag, on every exit path.
func (t *BPlusTree) insertInto(current uint32, isLeaf bool, key []byte, rid RID) (*splitResult, error) {
	if isLeaf {
		return t.insertIntoLeaf(current, key, rid)
	}
	return t.insertIntoInternal(current, key, rid)
}

func (t *BPlusTree) insertIntoLeaf(current uint32, key []byte, rid RID) (*splitResult, error) {
	leaf, pg, err := t.fetchLeaf(current)
	if err != nil {
		return nil, err
	}

	idx, found := t.w.findLeafIndex(leaf.keys, leaf.count, key)
	if found {
		if err := t.unpin(current, false); err != nil {
			return nil, err
		}
		return nil, ErrDuplicateKey
	}

	if leaf.count < t.w.leafOcc {
		insertLeafAt(leaf, idx, key, rid)
		t.writeLeaf(pg, current, leaf)
		if err := t.unpin(current, true); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return t.splitLeaf(current, leaf, pg, idx, key, rid)
}

func (t *BPlusTree) insertIntoInternal(current uint32, key []byte, rid RID) (*splitResult, error) {
	node, pg, err := t.fetchInternal(current)
	if err != nil {
		return nil, err
	}

	i := t.w.findChildIndex(node.keys, node.count, key)
	childIsLeaf := node.level == 1

	childResult, err := t.insertInto(node.children[i], childIsLeaf, key, rid)
	if err != nil {
		if unpinErr := t.unpin(current, false); unpinErr != nil {
			return nil, unpinErr
		}
		return nil, err
	}
	if childResult == nil {
		if err := t.unpin(current, false); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if node.count < t.w.nodeOcc {
		insertSeparatorAt(node, i, childResult.key, childResult.newLocal)
		t.writeInternal(pg, current, node)
		if err := t.unpin(current, true); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return t.splitInternal(current, node, pg, i, childResult.key, childResult.newLocal)
}

// insertLeafAt shifts keys/rids at [idx..) rightward by one and writes
// the new entry, assuming a free slot exists (leaf.count < capacity).
func insertLeafAt(n *leafNode, idx int, key []byte, rid RID) {
	for i := n.count; i > idx; i-- {
		n.keys[i] = n.keys[i-1]
		n.rids[i] = n.rids[i-1]
	}
	n.keys[idx] = append([]byte(nil), key...)
	n.rids[idx] = rid
	n.count++
}

// insertSeparatorAt shifts keys[i..) and children[i+1..) rightward by
// one so that newChild becomes children[i+1], assuming a free slot
// exists (node.count < capacity).
func insertSeparatorAt(n *internalNode, i int, key []byte, newChild uint32) {
	for j := n.count; j > i; j-- {
		n.keys[j] = n.keys[j-1]
	}
	for j := n.count + 1; j > i+1; j-- {
		n.children[j] = n.children[j-1]
	}
	n.keys[i] = append([]byte(nil), key...)
	n.children[i+1] = newChild
	n.count++
}
