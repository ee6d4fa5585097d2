package page

import (
	"bptreeidx/types"
	"sync"
)

const PageSize = types.PageSize

// Page is a pinned, in-memory frame holding the raw bytes of one on-disk
// page. The buffer pool owns the PinCount/IsDirty bookkeeping; everything
// above it (the node codec, the tree) only ever touches Data.
type Page struct {
	ID       int64
	FileID   uint32
	Data     []byte
	IsDirty  bool
	PinCount int32
	PageType types.PageType
	mu       sync.RWMutex
}

func (p *Page) Lock()    { p.mu.Lock() }
func (p *Page) Unlock()  { p.mu.Unlock() }
func (p *Page) RLock()   { p.mu.RLock() }
func (p *Page) RUnlock() { p.mu.RUnlock() }
