// Package recordfile is the record-file scanner collaborator spec.md §1
// and §6 describe: a lazy, non-restartable sequence of (record-id,
// record-bytes) pairs over an external file of fixed-length records, used
// only once, during initial bulk load.
//
// Records are packed records-per-page at a stride of recordSize, mirroring
// the teacher's heap-file page/slot addressing
// (storage_engine/access/heapfile_manager) but without a slot directory:
// records here never move or get tombstoned, so a slot's offset is pure
// arithmetic on its (page, slot) pair.
package recordfile

import (
	"bptreeidx/types"
	"errors"
	"fmt"
	"os"
)

// ErrEndOfSequence is returned by Next once every record has been produced.
var ErrEndOfSequence = errors.New("end of sequence")

// RecordID names a record by its position in the external file: the page
// it lives in and its slot within that page. Compared only for equality.
type RecordID struct {
	PageNum uint32
	SlotNum uint16
}

func (r RecordID) Equal(other RecordID) bool {
	return r.PageNum == other.PageNum && r.SlotNum == other.SlotNum
}

// Scanner produces records from a flat file in (page, slot) order.
type Scanner struct {
	file           *os.File
	recordSize     int
	recordsPerPage int
	pageNum        uint32
	slotNum        uint16
	done           bool
}

// Open opens path for scanning. recordSize is the fixed length, in bytes,
// of every record in the file.
func Open(path string, recordSize int) (*Scanner, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("recordfile.Open: recordSize must be positive, got %d", recordSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recordfile.Open: %w", err)
	}

	recordsPerPage := types.PageSize / recordSize
	if recordsPerPage < 1 {
		recordsPerPage = 1
	}

	return &Scanner{
		file:           f,
		recordSize:     recordSize,
		recordsPerPage: recordsPerPage,
	}, nil
}

// Next returns the next (record-id, record-bytes) pair, or
// ErrEndOfSequence once the file is exhausted.
func (s *Scanner) Next() (RecordID, []byte, error) {
	if s.done {
		return RecordID{}, nil, ErrEndOfSequence
	}

	rid := RecordID{PageNum: s.pageNum, SlotNum: s.slotNum}
	offset := int64(rid.PageNum)*int64(s.recordsPerPage)*int64(s.recordSize) +
		int64(rid.SlotNum)*int64(s.recordSize)

	buf := make([]byte, s.recordSize)
	n, err := s.file.ReadAt(buf, offset)
	if n < s.recordSize || err != nil {
		s.done = true
		return RecordID{}, nil, ErrEndOfSequence
	}

	s.slotNum++
	if int(s.slotNum) >= s.recordsPerPage {
		s.slotNum = 0
		s.pageNum++
	}

	return rid, buf, nil
}

// Close releases the underlying file handle.
func (s *Scanner) Close() error {
	return s.file.Close()
}
