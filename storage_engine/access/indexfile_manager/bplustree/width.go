package bplus

import (
	"bptreeidx/types"
	"encoding/binary"
	"math"
)

// AttrType is the key width an index is built on — the wire-level enum
// stored in the metadata page (spec.md §6: attrType:enum{0=int,1=double,2=string}).
type AttrType byte

const (
	AttrInt32    AttrType = 0
	AttrDouble   AttrType = 1
	AttrString10 AttrType = 2
)

func (t AttrType) String() string {
	switch t {
	case AttrInt32:
		return "int32"
	case AttrDouble:
		return "double"
	case AttrString10:
		return "string10"
	default:
		return "unknown"
	}
}

// String10Size is the fixed width of the string key, per spec.md §1.
const String10Size = 10

// recordIDSize is the on-wire size of a RID: PageNum uint32 + SlotNum uint16.
const recordIDSize = 6

// width is the single algorithm's capability set (spec.md §9
// "three-widths dispatch"): comparison, sentinel, fixed encode/decode size,
// and the derived per-page fanout. One algorithm, three parameterisations.
type width struct {
	attrType AttrType
	keySize  int
	sentinel []byte
	compare  func(a, b []byte) int
	leafOcc  int // L: max real keys per leaf
	nodeOcc  int // N: max real separators per internal node
}

// widthFor returns the capability set for attrType. Occupancies are
// derived from the page size at init time rather than hand-written magic
// numbers (spec.md §9 "page-as-byte-buffer" design note).
func widthFor(attrType AttrType) (*width, error) {
	switch attrType {
	case AttrInt32:
		return widthInt32, nil
	case AttrDouble:
		return widthDouble, nil
	case AttrString10:
		return widthString10, nil
	default:
		return nil, ErrBadKey
	}
}

func leafOccupancy(keySize int) int {
	// L*(keySize + ridSize) + rightSibling(4 bytes) <= PageSize
	return (types.PageSize - 4) / (keySize + recordIDSize)
}

func nodeOccupancy(keySize int) int {
	// N*keySize + (N+1)*4 (children) + level(4 bytes) <= PageSize
	return (types.PageSize - 8) / (keySize + 4)
}

func compareInt32(a, b []byte) int {
	av := int32(binary.LittleEndian.Uint32(a))
	bv := int32(binary.LittleEndian.Uint32(b))
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func compareDouble(a, b []byte) int {
	av := math.Float64frombits(binary.LittleEndian.Uint64(a))
	bv := math.Float64frombits(binary.LittleEndian.Uint64(b))
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func compareString10(a, b []byte) int {
	for i := 0; i < String10Size; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func sentinelInt32() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(math.MaxInt32))
	return b
}

func sentinelDouble() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(math.MaxFloat64))
	return b
}

func sentinelString10() []byte {
	return make([]byte, String10Size) // all-zero: empty string, first byte 0
}

var widthInt32 = &width{
	attrType: AttrInt32,
	keySize:  4,
	sentinel: sentinelInt32(),
	compare:  compareInt32,
	leafOcc:  leafOccupancy(4),
	nodeOcc:  nodeOccupancy(4),
}

var widthDouble = &width{
	attrType: AttrDouble,
	keySize:  8,
	sentinel: sentinelDouble(),
	compare:  compareDouble,
	leafOcc:  leafOccupancy(8),
	nodeOcc:  nodeOccupancy(8),
}

var widthString10 = &width{
	attrType: AttrString10,
	keySize:  String10Size,
	sentinel: sentinelString10(),
	compare:  compareString10,
	leafOcc:  leafOccupancy(String10Size),
	nodeOcc:  nodeOccupancy(String10Size),
}

// isSentinel reports whether key equals this width's reserved empty-slot
// marker (spec.md invariant I5: no real key may equal the sentinel).
func (w *width) isSentinel(key []byte) bool {
	return w.compare(key, w.sentinel) == 0
}

// EncodeInt32 / EncodeDouble / EncodeString10 turn a Go value into the
// fixed-width wire representation for the matching AttrType.
func EncodeInt32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func EncodeDouble(v float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func EncodeString10(v string) []byte {
	b := make([]byte, String10Size)
	copy(b, v)
	return b
}

func DecodeInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func DecodeDouble(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func DecodeString10(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
