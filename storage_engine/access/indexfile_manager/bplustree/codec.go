package bplus

import (
	"bptreeidx/types"
	"encoding/binary"
)

// Metadata page layout (spec.md §6, bit-exact):
//   relationName[20] | attrByteOffset:int32 | attrType:byte | rootPageNo:uint32
const (
	metaRelationNameSize = 20
	metaRelationOffset   = 0
	metaAttrOffsetOffset = metaRelationOffset + metaRelationNameSize
	metaAttrTypeOffset   = metaAttrOffsetOffset + 4
	metaRootPageOffset   = metaAttrTypeOffset + 1
)

func encodeMetadata(relationName string, attrByteOffset int32, attrType AttrType, rootLocal uint32) []byte {
	buf := make([]byte, types.PageSize)
	copy(buf[metaRelationOffset:metaRelationOffset+metaRelationNameSize], relationName)
	binary.LittleEndian.PutUint32(buf[metaAttrOffsetOffset:], uint32(attrByteOffset))
	buf[metaAttrTypeOffset] = byte(attrType)
	binary.LittleEndian.PutUint32(buf[metaRootPageOffset:], rootLocal)
	return buf
}

func decodeMetadata(data []byte) (relationName string, attrByteOffset int32, attrType AttrType, rootLocal uint32) {
	raw := data[metaRelationOffset : metaRelationOffset+metaRelationNameSize]
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	relationName = string(raw[:end])
	attrByteOffset = int32(binary.LittleEndian.Uint32(data[metaAttrOffsetOffset:]))
	attrType = AttrType(data[metaAttrTypeOffset])
	rootLocal = binary.LittleEndian.Uint32(data[metaRootPageOffset:])
	return
}

// Leaf wire layout: keyArray[L*keySize] | ridArray[L*6] | rightSibPageNo:uint32
func encodeLeaf(n *leafNode) []byte {
	buf := make([]byte, types.PageSize)
	off := 0
	for i := 0; i < len(n.keys); i++ {
		copy(buf[off:off+n.w.keySize], n.keys[i])
		off += n.w.keySize
	}
	for i := 0; i < len(n.rids); i++ {
		binary.LittleEndian.PutUint32(buf[off:], n.rids[i].PageNum)
		binary.LittleEndian.PutUint16(buf[off+4:], n.rids[i].SlotNum)
		off += recordIDSize
	}
	binary.LittleEndian.PutUint32(buf[off:], n.rightSibling)
	return buf
}

func decodeLeaf(data []byte, w *width) *leafNode {
	n := newLeafNode(w)
	off := 0
	for i := 0; i < w.leafOcc; i++ {
		key := make([]byte, w.keySize)
		copy(key, data[off:off+w.keySize])
		n.keys[i] = key
		off += w.keySize
	}
	for i := 0; i < w.leafOcc; i++ {
		n.rids[i] = RID{
			PageNum: binary.LittleEndian.Uint32(data[off:]),
			SlotNum: binary.LittleEndian.Uint16(data[off+4:]),
		}
		off += recordIDSize
	}
	n.rightSibling = binary.LittleEndian.Uint32(data[off:])
	n.count = countOccupied(n.keys, w)
	return n
}

// Internal wire layout: keyArray[N*keySize] | pageNoArray[(N+1)*4] | level:int32
func encodeInternal(n *internalNode) []byte {
	buf := make([]byte, types.PageSize)
	off := 0
	for i := 0; i < len(n.keys); i++ {
		copy(buf[off:off+n.w.keySize], n.keys[i])
		off += n.w.keySize
	}
	for i := 0; i < len(n.children); i++ {
		binary.LittleEndian.PutUint32(buf[off:], n.children[i])
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(n.level))
	return buf
}

func decodeInternal(data []byte, w *width) *internalNode {
	n := newInternalNode(w, 0)
	off := 0
	for i := 0; i < w.nodeOcc; i++ {
		key := make([]byte, w.keySize)
		copy(key, data[off:off+w.keySize])
		n.keys[i] = key
		off += w.keySize
	}
	for i := 0; i < w.nodeOcc+1; i++ {
		n.children[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	n.level = int32(binary.LittleEndian.Uint32(data[off:]))
	n.count = countOccupied(n.keys, w)
	return n
}

// countOccupied finds the length of the real-key prefix: the first slot
// equal to the sentinel marks the end (invariant I2: keys occupy a prefix).
func countOccupied(keys [][]byte, w *width) int {
	for i, k := range keys {
		if w.isSentinel(k) {
			return i
		}
	}
	return len(keys)
}
