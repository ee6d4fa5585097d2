package bplus

import (
	"bptreeidx/storage_engine/page"
	"fmt"
)

// splitResult is what each level of the recursive insert returns to its
// parent: either nil ("absorbed") or a promoted key and the local page
// number of the new right sibling ("split").
type splitResult struct {
	key      []byte
	newLocal uint32
}

// splitLeaf partitions leaf's L existing entries plus the incoming one
// into the old page and a freshly allocated right sibling R, per spec.md
// §4.3: sizes ⌈(L+1)/2⌉ and ⌊(L+1)/2⌋, promoted key is R's first key
// (copy-up), R threaded into the sibling list right after L.
func (t *BPlusTree) splitLeaf(current uint32, leaf *leafNode, pg *page.Page, idx int, key []byte, rid RID) (*splitResult, error) {
	total := leaf.count + 1
	combinedKeys := make([][]byte, total)
	combinedRids := make([]RID, total)

	copy(combinedKeys[:idx], leaf.keys[:idx])
	copy(combinedRids[:idx], leaf.rids[:idx])
	combinedKeys[idx] = append([]byte(nil), key...)
	combinedRids[idx] = rid
	copy(combinedKeys[idx+1:], leaf.keys[idx:leaf.count])
	copy(combinedRids[idx+1:], leaf.rids[idx:leaf.count])

	leftSize := (total + 1) / 2
	rightSize := total - leftSize

	newLeaf, newLocal, newPg, err := t.newLeaf()
	if err != nil {
		t.unpin(current, false)
		return nil, err
	}

	for i := 0; i < leftSize; i++ {
		leaf.keys[i] = combinedKeys[i]
		leaf.rids[i] = combinedRids[i]
	}
	for i := leftSize; i < len(leaf.keys); i++ {
		leaf.keys[i] = append([]byte(nil), t.w.sentinel...)
	}
	leaf.count = leftSize

	for i := 0; i < rightSize; i++ {
		newLeaf.keys[i] = combinedKeys[leftSize+i]
		newLeaf.rids[i] = combinedRids[leftSize+i]
	}
	newLeaf.count = rightSize
	newLeaf.rightSibling = leaf.rightSibling
	leaf.rightSibling = newLocal

	promoted := append([]byte(nil), newLeaf.keys[0]...)

	t.writeLeaf(newPg, newLocal, newLeaf)
	if err := t.unpin(newLocal, true); err != nil {
		t.unpin(current, false)
		return nil, err
	}
	t.writeLeaf(pg, current, leaf)
	if err := t.unpin(current, true); err != nil {
		return nil, err
	}

	fmt.Printf("[bplus] split leaf %d -> %d, %d (left=%d right=%d)\n", current, current, newLocal, leftSize, rightSize)
	return &splitResult{key: promoted, newLocal: newLocal}, nil
}
