package bplus

import (
	"bptreeidx/storage_engine/page"
	"fmt"
)

// splitInternal partitions node's N existing separators plus the
// incoming (key, rightChild) pair into the old page and a freshly
// allocated right sibling R at the same level, per spec.md §4.3: the
// middle separator (lower of the two middles on an even overflow) is
// pushed up rather than copied.
func (t *BPlusTree) splitInternal(current uint32, node *internalNode, pg *page.Page, i int, key []byte, rightChild uint32) (*splitResult, error) {
	n := t.w.nodeOcc
	combinedKeys := make([][]byte, n+1)
	combinedChildren := make([]uint32, n+2)

	copy(combinedKeys[:i], node.keys[:i])
	combinedKeys[i] = append([]byte(nil), key...)
	copy(combinedKeys[i+1:], node.keys[i:n])

	copy(combinedChildren[:i+1], node.children[:i+1])
	combinedChildren[i+1] = rightChild
	copy(combinedChildren[i+2:], node.children[i+1:n+1])

	mid := n / 2
	promoted := append([]byte(nil), combinedKeys[mid]...)

	newNode, newLocal, newPg, err := t.newInternal(node.level)
	if err != nil {
		t.unpin(current, false)
		return nil, err
	}

	for idx := 0; idx < mid; idx++ {
		node.keys[idx] = combinedKeys[idx]
	}
	for idx := mid; idx < len(node.keys); idx++ {
		node.keys[idx] = append([]byte(nil), t.w.sentinel...)
	}
	for idx := 0; idx <= mid; idx++ {
		node.children[idx] = combinedChildren[idx]
	}
	for idx := mid + 1; idx < len(node.children); idx++ {
		node.children[idx] = noPointer
	}
	node.count = mid

	rightCount := n - mid
	for idx := 0; idx < rightCount; idx++ {
		newNode.keys[idx] = combinedKeys[mid+1+idx]
	}
	for idx := 0; idx <= rightCount; idx++ {
		newNode.children[idx] = combinedChildren[mid+1+idx]
	}
	newNode.count = rightCount

	t.writeInternal(newPg, newLocal, newNode)
	if err := t.unpin(newLocal, true); err != nil {
		t.unpin(current, false)
		return nil, err
	}
	t.writeInternal(pg, current, node)
	if err := t.unpin(current, true); err != nil {
		return nil, err
	}

	fmt.Printf("[bplus] split internal %d -> %d, %d at level %d (left=%d right=%d)\n", current, current, newLocal, node.level, node.count, newNode.count)
	return &splitResult{key: promoted, newLocal: newLocal}, nil
}
