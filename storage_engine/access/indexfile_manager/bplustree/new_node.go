package bplus

import (
	"bptreeidx/storage_engine/page"
	"bptreeidx/types"
	"fmt"
)

// allocPage reserves a fresh page in this tree's file and returns it
// pinned and dirty, along with its local page number.
func (t *BPlusTree) allocPage(pageType types.PageType) (*page.Page, uint32, error) {
	pg, err := t.bp.NewPage(t.fileID, pageType)
	if err != nil {
		return nil, 0, fmt.Errorf("allocPage: %w", err)
	}
	local := uint32(t.dm.GetLocalPageID(pg.ID))
	fmt.Printf("[bplus] allocated page %d (type=%v)\n", local, pageType)
	return pg, local, nil
}

// fetchPage returns a pinned frame for local, reading it through the
// buffer pool on a miss.
func (t *BPlusTree) fetchPage(local uint32) (*page.Page, error) {
	pg, err := t.bp.FetchPage(t.globalID(local))
	if err != nil {
		return nil, fmt.Errorf("fetchPage: page %d: %w", local, err)
	}
	return pg, nil
}

// unpin releases the pin held on local, marking it dirty if its bytes
// were modified in this call.
func (t *BPlusTree) unpin(local uint32, dirty bool) error {
	if err := t.bp.UnpinPage(t.globalID(local), dirty); err != nil {
		return fmt.Errorf("unpin: page %d: %w", local, err)
	}
	return nil
}

// newLeaf allocates and pins a fresh, empty leaf page for the active
// width.
func (t *BPlusTree) newLeaf() (*leafNode, uint32, *page.Page, error) {
	pg, local, err := t.allocPage(types.PageTypeBPlusNode)
	if err != nil {
		return nil, 0, nil, err
	}
	n := newLeafNode(t.w)
	t.writeLeaf(pg, local, n)
	return n, local, pg, nil
}

// newInternal allocates and pins a fresh, empty internal page at level.
func (t *BPlusTree) newInternal(level int32) (*internalNode, uint32, *page.Page, error) {
	pg, local, err := t.allocPage(types.PageTypeBPlusNode)
	if err != nil {
		return nil, 0, nil, err
	}
	n := newInternalNode(t.w, level)
	t.writeInternal(pg, local, n)
	return n, local, pg, nil
}

// fetchLeaf returns the pinned frame and decoded leaf at local, serving
// the decode from the node cache when possible.
func (t *BPlusTree) fetchLeaf(local uint32) (*leafNode, *page.Page, error) {
	pg, err := t.fetchPage(local)
	if err != nil {
		return nil, nil, err
	}
	if cached, ok := t.nodeCache.Get(pg.ID); ok {
		if n, ok := cached.(*leafNode); ok {
			return n, pg, nil
		}
	}
	pg.RLock()
	n := decodeLeaf(pg.Data, t.w)
	pg.RUnlock()
	t.nodeCache.Set(pg.ID, n, 1)
	return n, pg, nil
}

// fetchInternal returns the pinned frame and decoded internal node at
// local.
func (t *BPlusTree) fetchInternal(local uint32) (*internalNode, *page.Page, error) {
	pg, err := t.fetchPage(local)
	if err != nil {
		return nil, nil, err
	}
	if cached, ok := t.nodeCache.Get(pg.ID); ok {
		if n, ok := cached.(*internalNode); ok {
			return n, pg, nil
		}
	}
	pg.RLock()
	n := decodeInternal(pg.Data, t.w)
	pg.RUnlock()
	t.nodeCache.Set(pg.ID, n, 1)
	return n, pg, nil
}

// writeLeaf re-encodes n into pg's bytes and refreshes the node cache
// entry in place (the cache is invalidated by being overwritten, never
// left stale).
func (t *BPlusTree) writeLeaf(pg *page.Page, local uint32, n *leafNode) {
	pg.Lock()
	copy(pg.Data, encodeLeaf(n))
	pg.Unlock()
	t.nodeCache.Set(pg.ID, n, 1)
}

func (t *BPlusTree) writeInternal(pg *page.Page, local uint32, n *internalNode) {
	pg.Lock()
	copy(pg.Data, encodeInternal(n))
	pg.Unlock()
	t.nodeCache.Set(pg.ID, n, 1)
}
