package bplus

import (
	diskmanager "bptreeidx/storage_engine/disk_manager"
	"bptreeidx/storage_engine/bufferpool"
	"bptreeidx/storage_engine/recordfile"
	"bptreeidx/types"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/ristretto/v2"
)

// indexFileName derives the canonical on-disk name for an index over
// relationName at attrByteOffset, grounded on original_source/btree.cpp's
// idxStr convention.
func indexFileName(relationName string, attrByteOffset int32) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// Open implements spec.md §4.5's open protocol: create-or-open the index
// file, bootstrap or validate its metadata page, and — for a brand new
// index — bulk-load it by driving scanner to completion. scanner may be
// nil; a nil scanner on a fresh index simply produces an empty tree.
func Open(relationName string, attrByteOffset int32, attrType AttrType, bp *bufferpool.BufferPool, dm *diskmanager.DiskManager, scanner *recordfile.Scanner) (*BPlusTree, error) {
	w, err := widthFor(attrType)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	path := indexFileName(relationName, attrByteOffset)
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)

	fileID := dm.AllocateFileID()
	fileID, err = dm.OpenFileWithID(path, fileID)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[int64, any]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("Open: building node cache: %w", err)
	}

	t := &BPlusTree{
		w:              w,
		bp:             bp,
		dm:             dm,
		fileID:         fileID,
		relationName:   relationName,
		attrByteOffset: attrByteOffset,
		nodeCache:      cache,
	}

	if isNew {
		if err := t.bootstrap(attrType); err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		if scanner != nil {
			if err := t.bulkLoad(scanner); err != nil {
				return nil, fmt.Errorf("Open: bulk load: %w", err)
			}
		}
		fmt.Printf("[bplus] created index %s (attrType=%s)\n", path, attrType)
		return t, nil
	}

	if err := t.reopen(relationName, attrByteOffset, attrType); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	fmt.Printf("[bplus] opened index %s (attrType=%s, root=%d)\n", path, attrType, t.rootLocal)
	return t, nil
}

// bootstrap creates the metadata page and the initial root shape spec.md
// §9's Open Question resolves to: an internal node at level 1 with a
// single child that is one empty leaf.
func (t *BPlusTree) bootstrap(attrType AttrType) error {
	metaPg, metaLocal, err := t.allocPage(types.PageTypeMetadata)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	t.metaLocal = metaLocal

	_, leafLocal, _, err := t.newLeaf()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := t.unpin(leafLocal, true); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	root, rootLocal, rootPg, err := t.newInternal(1)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	root.children[0] = leafLocal
	root.count = 0
	t.writeInternal(rootPg, rootLocal, root)
	// rootPg stays pinned: this is the permanent root pin.
	t.rootLocal = rootLocal

	metaPg.Lock()
	copy(metaPg.Data, encodeMetadata(t.relationName, t.attrByteOffset, attrType, rootLocal))
	metaPg.Unlock()
	return t.unpin(metaLocal, true)
}

// reopen validates an existing index file's metadata against the
// caller's arguments and pins the root for the life of the index.
func (t *BPlusTree) reopen(relationName string, attrByteOffset int32, attrType AttrType) error {
	fd, err := t.dm.GetFileDescriptor(t.fileID)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	for i := int64(0); i < fd.NextPageID; i++ {
		t.dm.RegisterPage(t.fileID, i)
	}

	t.metaLocal = 0
	metaPg, err := t.fetchPage(0)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	metaPg.RLock()
	gotRelation, gotOffset, gotType, rootLocal := decodeMetadata(metaPg.Data)
	metaPg.RUnlock()
	if err := t.unpin(0, false); err != nil {
		return fmt.Errorf("reopen: %w", err)
	}

	if gotRelation != relationName || gotOffset != attrByteOffset || gotType != attrType {
		return ErrBadIndexInfo
	}

	t.rootLocal = rootLocal
	if _, err := t.fetchPage(rootLocal); err != nil {
		return fmt.Errorf("reopen: pinning root: %w", err)
	}
	return nil
}

// bulkLoad drives scanner to completion, extracting the indexed
// attribute from each record and inserting (key, rid) into the tree.
func (t *BPlusTree) bulkLoad(scanner *recordfile.Scanner) error {
	for {
		rid, record, err := scanner.Next()
		if errors.Is(err, recordfile.ErrEndOfSequence) {
			return nil
		}
		if err != nil {
			return err
		}
		key := extractKey(record, t.attrByteOffset, t.w.keySize)
		if err := t.Insert(key, ridFromRecordID(rid)); err != nil {
			return fmt.Errorf("bulkLoad: record at page %d slot %d: %w", rid.PageNum, rid.SlotNum, err)
		}
	}
}

func extractKey(record []byte, attrByteOffset int32, keySize int) []byte {
	key := make([]byte, keySize)
	copy(key, record[attrByteOffset:int(attrByteOffset)+keySize])
	return key
}

// Close implements spec.md §4.5's teardown: end any active scan
// (swallowing ScanNotInitialized), release the root's permanent pin,
// flush the file, and close it. No operation on t is valid afterwards.
func (t *BPlusTree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.endScanLocked(); err != nil && !errors.Is(err, ErrScanNotInitialized) {
		return fmt.Errorf("Close: %w", err)
	}

	if err := t.bp.UnpinPage(t.globalID(t.rootLocal), false); err != nil && !errors.Is(err, bufferpool.ErrPageNotPinned) {
		return fmt.Errorf("Close: releasing root pin: %w", err)
	}

	if err := t.bp.Flush(t.fileID); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	if err := t.dm.CloseFile(t.fileID); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	fmt.Printf("[bplus] closed index %s\n", indexFileName(t.relationName, t.attrByteOffset))
	return nil
}
