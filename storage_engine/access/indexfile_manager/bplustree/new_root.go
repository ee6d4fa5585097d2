package bplus

import "fmt"

// growRoot implements spec.md §4.3's root-growth step: allocate a new
// root whose only separator is the promoted key and whose children are
// (old root, new sibling), then move the permanent root pin and persist
// the new root page id to the metadata page. The old root is never the
// leaf level in this tree's initial-root shape, so the new root's level
// is always "children are internal" (0).
func (t *BPlusTree) growRoot(result *splitResult) error {
	newRoot, newLocal, newPg, err := t.newInternal(0)
	if err != nil {
		return fmt.Errorf("growRoot: %w", err)
	}

	newRoot.keys[0] = append([]byte(nil), result.key...)
	newRoot.children[0] = t.rootLocal
	newRoot.children[1] = result.newLocal
	newRoot.count = 1
	t.writeInternal(newPg, newLocal, newRoot)

	if err := t.unpin(t.rootLocal, false); err != nil {
		return fmt.Errorf("growRoot: releasing old root's permanent pin: %w", err)
	}

	if err := t.writeRootPointer(newLocal); err != nil {
		return fmt.Errorf("growRoot: %w", err)
	}

	// newPg stays pinned: that pin becomes the new root's permanent pin.
	t.rootLocal = newLocal
	fmt.Printf("[bplus] root grew: new root %d, children %d and %d\n", newLocal, newRoot.children[0], newRoot.children[1])
	return nil
}

// writeRootPointer updates the metadata page's rootPageNo field in place.
func (t *BPlusTree) writeRootPointer(rootLocal uint32) error {
	metaPg, err := t.fetchPage(t.metaLocal)
	if err != nil {
		return fmt.Errorf("writeRootPointer: %w", err)
	}
	metaPg.Lock()
	relationName, attrByteOffset, attrType, _ := decodeMetadata(metaPg.Data)
	copy(metaPg.Data, encodeMetadata(relationName, attrByteOffset, attrType, rootLocal))
	metaPg.Unlock()
	return t.unpin(t.metaLocal, true)
}
