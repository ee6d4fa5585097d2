package bplus

import (
	diskmanager "bptreeidx/storage_engine/disk_manager"
	"bptreeidx/storage_engine/bufferpool"
	"bptreeidx/storage_engine/recordfile"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// noPointer marks an absent local page pointer on the wire. Local
// page 0 is always the metadata page, so it can never legitimately be a
// leaf's right sibling or an internal node's child.
const noPointer uint32 = 0

// RID names a record in the external record file by its (page, slot)
// position. Compared only for equality, never ordered (spec.md §3).
type RID struct {
	PageNum uint32
	SlotNum uint16
}

func (r RID) Equal(other RID) bool {
	return r.PageNum == other.PageNum && r.SlotNum == other.SlotNum
}

func ridFromRecordID(r recordfile.RecordID) RID {
	return RID{PageNum: r.PageNum, SlotNum: r.SlotNum}
}

// leafNode is the in-memory decoding of a leaf page: up to w.leafOcc
// (key, rid) pairs, sentinel-padded past count, plus a right-sibling
// pointer threading leaves into the scan order.
type leafNode struct {
	w            *width
	keys         [][]byte
	rids         []RID
	count        int
	rightSibling uint32 // local page number, noPointer if none
}

// internalNode is the in-memory decoding of an internal page: up to
// w.nodeOcc separators with w.nodeOcc+1 children, sentinel-padded past
// count, plus the level flag (1 = children are leaves).
type internalNode struct {
	w        *width
	level    int32
	keys     [][]byte
	children []uint32
	count    int
}

func newLeafNode(w *width) *leafNode {
	keys := make([][]byte, w.leafOcc)
	for i := range keys {
		keys[i] = append([]byte(nil), w.sentinel...)
	}
	return &leafNode{
		w:            w,
		keys:         keys,
		rids:         make([]RID, w.leafOcc),
		rightSibling: noPointer,
	}
}

func newInternalNode(w *width, level int32) *internalNode {
	keys := make([][]byte, w.nodeOcc)
	for i := range keys {
		keys[i] = append([]byte(nil), w.sentinel...)
	}
	return &internalNode{
		w:        w,
		level:    level,
		keys:     keys,
		children: make([]uint32, w.nodeOcc+1),
	}
}

// scanState is the explicit object spec.md §9's design notes ask for,
// replacing the teacher's loose scan fields scattered on the tree itself.
type scanStatus int

const (
	scanIdle scanStatus = iota
	scanActive
	scanExhausted
)

type scanState struct {
	status       scanStatus
	leafLocal    uint32
	entryIndex   int
	lowVal       []byte
	lowOp        Operator
	highVal      []byte
	highOp       Operator
}

// Operator is one of the four comparison opcodes a scan bound may use.
type Operator int

const (
	GT Operator = iota
	GTE
	LT
	LTE
)

// BPlusTree is the public index object: one B+-tree over one attribute of
// one external record file, backed by one index file through the buffer
// pool. Grounded on the teacher's BPlusTree type in
// storage_engine/access/indexfile_manager/bplustree/struct.go, generalised
// to the three-width dispatch and recursive split propagation spec.md §4
// describes.
type BPlusTree struct {
	mu sync.Mutex

	w   *width
	bp  *bufferpool.BufferPool
	dm  *diskmanager.DiskManager

	fileID         uint32
	relationName   string
	attrByteOffset int32

	metaLocal uint32
	rootLocal uint32 // kept pinned for the lifetime of the index
	scan      scanState

	nodeCache *ristretto.Cache[int64, any] // page-id -> decoded *leafNode/*internalNode
}

func (t *BPlusTree) globalID(local uint32) int64 {
	return t.dm.GetGlobalPageID(t.fileID, int64(local))
}
