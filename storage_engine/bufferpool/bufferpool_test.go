package bufferpool

import (
	diskmanager "bptreeidx/storage_engine/disk_manager"
	"bptreeidx/types"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestPool(t *testing.T, capacity int) (*BufferPool, *diskmanager.DiskManager, uint32) {
	t.Helper()
	testDir := filepath.Join(os.TempDir(), "bptreeidx_bp_test")
	os.MkdirAll(testDir, 0755)
	t.Cleanup(func() { os.RemoveAll(testDir) })

	dm := diskmanager.NewDiskManager()
	fileID, err := dm.OpenFileWithID(filepath.Join(testDir, "t.idx"), 1)
	if err != nil {
		t.Fatalf("OpenFileWithID: %v", err)
	}
	return NewBufferPool(capacity, dm), dm, fileID
}

func TestAllocFetchUnpinRoundTrip(t *testing.T) {
	bp, _, fileID := newTestPool(t, 4)

	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	pg.Data[0] = 0xAB
	if err := bp.UnpinPage(pg.ID, true); err != nil {
		t.Fatalf("UnpinPage: %v", err)
	}

	fetched, err := bp.FetchPage(pg.ID)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if fetched.Data[0] != 0xAB {
		t.Errorf("expected cached byte 0xAB, got %#x", fetched.Data[0])
	}
	if err := bp.UnpinPage(pg.ID, false); err != nil {
		t.Fatalf("UnpinPage: %v", err)
	}
}

func TestUnpinWithoutPinSignalsPageNotPinned(t *testing.T) {
	bp, _, fileID := newTestPool(t, 4)

	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if err := bp.UnpinPage(pg.ID, false); err != nil {
		t.Fatalf("first UnpinPage: %v", err)
	}
	if err := bp.UnpinPage(pg.ID, false); !errors.Is(err, ErrPageNotPinned) {
		t.Errorf("expected ErrPageNotPinned on second unpin, got %v", err)
	}
}

func TestEvictionSparesPinnedPages(t *testing.T) {
	bp, _, fileID := newTestPool(t, 2)

	pg1, _ := bp.NewPage(fileID, types.PageTypeBPlusNode) // stays pinned
	pg2, _ := bp.NewPage(fileID, types.PageTypeBPlusNode)
	bp.UnpinPage(pg2.ID, false)

	pg3, err := bp.NewPage(fileID, types.PageTypeBPlusNode) // should evict pg2, not pg1
	if err != nil {
		t.Fatalf("NewPage pg3: %v", err)
	}
	bp.UnpinPage(pg3.ID, false)

	if _, err := bp.FetchPage(pg1.ID); err != nil {
		t.Errorf("pinned page pg1 should not have been evicted: %v", err)
	}
	bp.UnpinPage(pg1.ID, false)
	bp.UnpinPage(pg1.ID, false)
}

func TestFlushIsScopedToOneFile(t *testing.T) {
	bp, dm, fileID1 := newTestPool(t, 8)
	testDir := filepath.Join(os.TempDir(), "bptreeidx_bp_test")
	fileID2, err := dm.OpenFileWithID(filepath.Join(testDir, "other.idx"), 2)
	if err != nil {
		t.Fatalf("OpenFileWithID: %v", err)
	}

	pg1, _ := bp.NewPage(fileID1, types.PageTypeBPlusNode)
	pg2, _ := bp.NewPage(fileID2, types.PageTypeBPlusNode)
	bp.UnpinPage(pg1.ID, true)
	bp.UnpinPage(pg2.ID, true)

	if err := bp.Flush(fileID1); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	stats := bp.GetStats()
	if stats.DirtyPages != 1 {
		t.Errorf("expected exactly one dirty page left (file 2's), got %d", stats.DirtyPages)
	}
}
