package bufferpool

import (
	diskmanager "bptreeidx/storage_engine/disk_manager"
	"bptreeidx/storage_engine/page"
	"errors"
	"sync"
)

// ErrPageNotPinned is returned by UnpinPage when the caller's own pin
// bookkeeping is wrong — it tries to release a page that has no
// outstanding pin. Spec.md §6 names this PageNotPinned; bulk-load and
// teardown paths are expected to tolerate it defensively.
var ErrPageNotPinned = errors.New("page not pinned")

// BufferPool is an LRU-cached, pin-counted frame pool over one or more
// index files. It is the "buffer pool" external collaborator spec.md §1
// and §6 describe: alloc, read, unpin, flush, plus FlushPage for a single
// page and GetStats/Size/Capacity for inspection.
type BufferPool struct {
	pages       map[int64]*page.Page // global pageID -> frame
	capacity    int
	diskManager *diskmanager.DiskManager
	accessOrder []int64 // LRU order, most recently used at the end
	mu          sync.Mutex
}

type BufferPoolStats struct {
	TotalPages  int
	PinnedPages int
	DirtyPages  int
	Capacity    int
}
