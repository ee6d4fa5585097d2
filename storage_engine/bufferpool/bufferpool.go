// Package bufferpool implements the pinning buffer pool the B+-tree core
// cooperates with: alloc returns a pinned frame for a brand new page, read
// returns a pinned frame for an existing page (loading it from the page
// file on a miss), unpin releases a pin and optionally marks a frame
// dirty, and flush writes every dirty frame belonging to one file back to
// disk. The tree never touches the page file directly.
package bufferpool

import (
	diskmanager "bptreeidx/storage_engine/disk_manager"
	"bptreeidx/storage_engine/page"
	"bptreeidx/types"
	"fmt"
)

func NewBufferPool(capacity int, diskManager *diskmanager.DiskManager) *BufferPool {
	return &BufferPool{
		pages:       make(map[int64]*page.Page, capacity),
		capacity:    capacity,
		diskManager: diskManager,
		accessOrder: make([]int64, 0, capacity),
	}
}

// FetchPage is the "read" half of the contract: return a pinned frame for
// pageID, loading it from the page file on a miss.
func (bp *BufferPool) FetchPage(pageID int64) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if pg, exists := bp.pages[pageID]; exists {
		bp.updateAccessOrder(pageID)
		pg.Lock()
		pg.PinCount++
		pg.Unlock()
		return pg, nil
	}

	if bp.diskManager == nil {
		return nil, fmt.Errorf("FetchPage: disk manager not set")
	}

	pg, err := bp.diskManager.ReadPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("FetchPage: failed to read page %d from disk: %w", pageID, err)
	}

	if err := bp.addPage(pg); err != nil {
		return nil, fmt.Errorf("FetchPage: failed to cache page %d: %w", pageID, err)
	}

	pg.Lock()
	pg.PinCount++
	pg.Unlock()
	return pg, nil
}

// NewPage is the "alloc" half of the contract: reserve a new page ID and
// return it pinned and dirty.
func (bp *BufferPool) NewPage(fileID uint32, pageType types.PageType) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.diskManager == nil {
		return nil, fmt.Errorf("NewPage: disk manager not set")
	}

	pageID, err := bp.diskManager.AllocatePage(fileID, pageType)
	if err != nil {
		return nil, fmt.Errorf("NewPage: failed to allocate page: %w", err)
	}

	pg := diskmanager.NewPage(pageID, fileID, pageType)
	pg.IsDirty = true
	pg.Lock()
	pg.PinCount++
	pg.Unlock()

	if err := bp.addPage(pg); err != nil {
		pg.Lock()
		pg.PinCount--
		pg.Unlock()
		return nil, fmt.Errorf("NewPage: failed to cache new page: %w", err)
	}

	return pg, nil
}

// UnpinPage is the "unpin" half of the contract.
func (bp *BufferPool) UnpinPage(pageID int64, dirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, exists := bp.pages[pageID]
	if !exists {
		return fmt.Errorf("UnpinPage: page %d: %w", pageID, ErrPageNotPinned)
	}

	pg.Lock()
	defer pg.Unlock()

	if pg.PinCount <= 0 {
		return fmt.Errorf("UnpinPage: page %d: %w", pageID, ErrPageNotPinned)
	}
	pg.PinCount--

	if dirty {
		pg.IsDirty = true
	}
	return nil
}

// FlushPage writes one page to disk if dirty.
func (bp *BufferPool) FlushPage(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, exists := bp.pages[pageID]
	if !exists {
		return fmt.Errorf("FlushPage: page %d not in buffer pool", pageID)
	}

	pg.Lock()
	defer pg.Unlock()
	if !pg.IsDirty {
		return nil
	}
	if err := bp.diskManager.WritePage(pg); err != nil {
		return fmt.Errorf("FlushPage: page %d: %w", pageID, err)
	}
	pg.IsDirty = false
	return nil
}

// Flush writes every dirty page belonging to fileID back to disk — the
// "flush" half of the contract, scoped to a single index file so closing
// one index never touches another's pages.
func (bp *BufferPool) Flush(fileID uint32) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.diskManager == nil {
		return fmt.Errorf("Flush: disk manager not set")
	}

	for _, pg := range bp.pages {
		if pg.FileID != fileID {
			continue
		}
		pg.Lock()
		if pg.IsDirty {
			if err := bp.diskManager.WritePage(pg); err != nil {
				pg.Unlock()
				return fmt.Errorf("Flush: page %d: %w", pg.ID, err)
			}
			pg.IsDirty = false
		}
		pg.Unlock()
	}
	return nil
}

func (bp *BufferPool) addPage(pg *page.Page) error {
	if _, exists := bp.pages[pg.ID]; exists {
		bp.updateAccessOrder(pg.ID)
		return nil
	}

	if len(bp.pages) >= bp.capacity {
		if err := bp.evictLRU(); err != nil {
			return fmt.Errorf("failed to evict page: %w", err)
		}
	}

	bp.pages[pg.ID] = pg
	bp.updateAccessOrder(pg.ID)
	return nil
}

func (bp *BufferPool) evictLRU() error {
	for i := 0; i < len(bp.accessOrder); i++ {
		pageID := bp.accessOrder[i]
		pg, exists := bp.pages[pageID]
		if !exists {
			bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
			i--
			continue
		}

		pg.Lock()
		pinCount := pg.PinCount
		isDirty := pg.IsDirty
		if pinCount > 0 {
			pg.Unlock()
			continue
		}

		if isDirty && bp.diskManager != nil {
			if err := bp.diskManager.WritePage(pg); err != nil {
				pg.Unlock()
				return fmt.Errorf("failed to write page %d during eviction: %w", pageID, err)
			}
			pg.IsDirty = false
		}
		pg.Unlock()

		delete(bp.pages, pageID)
		bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
		return nil
	}

	return fmt.Errorf("evictLRU: all pages are pinned, cannot evict")
}

func (bp *BufferPool) updateAccessOrder(pageID int64) {
	for i, id := range bp.accessOrder {
		if id == pageID {
			bp.accessOrder = append(bp.accessOrder[:i], bp.accessOrder[i+1:]...)
			break
		}
	}
	bp.accessOrder = append(bp.accessOrder, pageID)
}
