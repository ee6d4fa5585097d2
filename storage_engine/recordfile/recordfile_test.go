package recordfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestRecords(t *testing.T, records [][]byte, recordSize int) string {
	t.Helper()
	testDir := filepath.Join(os.TempDir(), "bptreeidx_rf_test")
	os.MkdirAll(testDir, 0755)
	t.Cleanup(func() { os.RemoveAll(testDir) })

	path := filepath.Join(testDir, "records.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	for _, r := range records {
		buf := make([]byte, recordSize)
		copy(buf, r)
		if _, err := f.Write(buf); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	return path
}

func TestScannerSequencesInOrder(t *testing.T) {
	recordSize := 16
	records := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}
	path := writeTestRecords(t, records, recordSize)

	s, err := Open(path, recordSize)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var got []RecordID
	for i := 0; i < len(records); i++ {
		rid, data, err := s.Next()
		if err != nil {
			t.Fatalf("Next() at %d: %v", i, err)
		}
		if string(data[:len(records[i])]) != string(records[i]) {
			t.Errorf("record %d: got %q, want %q", i, data[:len(records[i])], records[i])
		}
		got = append(got, rid)
	}

	if _, _, err := s.Next(); err != ErrEndOfSequence {
		t.Errorf("expected ErrEndOfSequence, got %v", err)
	}

	for i, rid := range got {
		if int(rid.SlotNum) != i {
			t.Errorf("record %d: expected slot %d, got %d", i, i, rid.SlotNum)
		}
	}
}

func TestScannerNotRestartable(t *testing.T) {
	recordSize := 8
	path := writeTestRecords(t, [][]byte{[]byte("a"), []byte("b")}, recordSize)

	s, err := Open(path, recordSize)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for {
		if _, _, err := s.Next(); err == ErrEndOfSequence {
			break
		} else if err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if _, _, err := s.Next(); err != ErrEndOfSequence {
		t.Errorf("expected ErrEndOfSequence on exhausted scanner, got %v", err)
	}
}
