// Package diskmanager is the page file collaborator: it owns raw file
// handles, page allocation counters, and the mapping between a global page
// ID (as seen by the buffer pool) and a page's byte offset inside its file.
//
// Everything here is out of the B+-tree's scope by design (spec.md §1):
// the tree only ever calls through the buffer pool, which in turn calls
// through this package when a page isn't cached.
package diskmanager

import (
	"bptreeidx/storage_engine/page"
	"bptreeidx/types"
	"fmt"
	"os"
)

func NewDiskManager() *DiskManager {
	return &DiskManager{
		files:         make(map[uint32]*FileDescriptor),
		globalPageMap: make(map[int64]uint32),
		localToGlobal: make(map[PageKey]int64),
		nextFileID:    1,
	}
}

func NewPage(pageID int64, fileID uint32, pageType types.PageType) *page.Page {
	return &page.Page{
		ID:       pageID,
		FileID:   fileID,
		Data:     make([]byte, page.PageSize),
		PageType: pageType,
	}
}

// AllocateFileID reserves the next unused file ID. Index lifecycle code
// calls this once per Open to get a stable ID to pass to OpenFileWithID.
func (dm *DiskManager) AllocateFileID() uint32 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	id := dm.nextFileID
	dm.nextFileID++
	return id
}

// OpenFileWithID opens or creates filePath and registers it under a caller
// chosen fileID (index lifecycle code obtains one from AllocateFileID). If
// filePath is already open, the ID it is registered under is returned and
// fileID is ignored; a file reopened after CloseFile gets the new fileID.
func (dm *DiskManager) OpenFileWithID(filePath string, fileID uint32) (uint32, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for id, fd := range dm.files {
		if fd.FilePath == filePath {
			return id, nil
		}
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return 0, fmt.Errorf("OpenFileWithID: failed to open %s: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return 0, err
	}
	numPages := stat.Size() / int64(page.PageSize)

	dm.files[fileID] = &FileDescriptor{
		FileID:     fileID,
		FilePath:   filePath,
		File:       file,
		NextPageID: numPages,
	}
	if fileID >= dm.nextFileID {
		dm.nextFileID = fileID + 1
	}

	return fileID, nil
}

// ReadPage reads a page from disk.
func (dm *DiskManager) ReadPage(globalPageID int64) (*page.Page, error) {
	dm.mu.RLock()
	fileID, exists := dm.globalPageMap[globalPageID]
	dm.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("ReadPage: page %d not found in global page map", globalPageID)
	}

	dm.mu.RLock()
	fd, exists := dm.files[fileID]
	dm.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("ReadPage: file %d not found", fileID)
	}

	fd.mu.RLock()
	defer fd.mu.RUnlock()
	if fd.File == nil {
		return nil, fmt.Errorf("ReadPage: file %d is closed", fileID)
	}

	localPageID := dm.getLocalPageID(globalPageID)
	offset := localPageID * int64(page.PageSize)

	pg := NewPage(globalPageID, fileID, types.PageTypeUnknown)
	n, err := fd.File.ReadAt(pg.Data, offset)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("ReadPage: failed to read page %d of file %d: %w", localPageID, fileID, err)
	}
	for i := n; i < page.PageSize; i++ {
		pg.Data[i] = 0
	}

	return pg, nil
}

// WritePage writes a page's full 4096 bytes to disk verbatim — the node
// codec owns every byte of the buffer, so nothing here inspects or stamps
// the page's contents.
func (dm *DiskManager) WritePage(pg *page.Page) error {
	dm.mu.RLock()
	fd, exists := dm.files[pg.FileID]
	dm.mu.RUnlock()
	if !exists {
		return fmt.Errorf("WritePage: file %d not found", pg.FileID)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.File == nil {
		return fmt.Errorf("WritePage: file %d is closed", pg.FileID)
	}
	if len(pg.Data) != page.PageSize {
		return fmt.Errorf("WritePage: page data size %d does not match page size %d", len(pg.Data), page.PageSize)
	}

	localPageID := dm.getLocalPageID(pg.ID)
	offset := localPageID * int64(page.PageSize)

	if _, err := fd.File.WriteAt(pg.Data, offset); err != nil {
		return fmt.Errorf("WritePage: failed to write page %d of file %d: %w", localPageID, pg.FileID, err)
	}

	if localPageID >= fd.NextPageID {
		fd.NextPageID = localPageID + 1
	}
	pg.IsDirty = false
	return nil
}

// AllocatePage reserves the next local page number for fileID and returns
// its global ID. Nothing is written to disk here — that happens when the
// buffer pool later flushes the dirty frame.
func (dm *DiskManager) AllocatePage(fileID uint32, pageType types.PageType) (int64, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return 0, fmt.Errorf("AllocatePage: file %d not found", fileID)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.File == nil {
		return 0, fmt.Errorf("AllocatePage: file %d is closed", fileID)
	}

	localPageNum := fd.NextPageID
	fd.NextPageID++

	globalPageID := int64(fileID)<<32 | localPageNum
	dm.globalPageMap[globalPageID] = fileID
	dm.localToGlobal[PageKey{FileID: fileID, LocalNum: localPageNum}] = globalPageID

	return globalPageID, nil
}

func (dm *DiskManager) getLocalPageID(globalPageID int64) int64 {
	return globalPageID & 0xFFFFFFFF
}

func (dm *DiskManager) GetGlobalPageID(fileID uint32, localPageNum int64) int64 {
	return int64(fileID)<<32 | localPageNum
}

func (dm *DiskManager) GetLocalPageID(globalPageID int64) int64 {
	return globalPageID & 0xFFFFFFFF
}

// RegisterPage makes an already-on-disk local page visible to the global
// page map. Called for every existing page when an index file is reopened.
func (dm *DiskManager) RegisterPage(fileID uint32, localPageNum int64) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	key := PageKey{FileID: fileID, LocalNum: localPageNum}
	if _, exists := dm.localToGlobal[key]; exists {
		return
	}
	globalPageID := int64(fileID)<<32 | localPageNum
	dm.globalPageMap[globalPageID] = fileID
	dm.localToGlobal[key] = globalPageID
}

// Sync flushes OS file buffers for every open file.
func (dm *DiskManager) Sync() error {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	for _, fd := range dm.files {
		fd.mu.Lock()
		if fd.File != nil {
			if err := fd.File.Sync(); err != nil {
				fd.mu.Unlock()
				return fmt.Errorf("Sync: file %d: %w", fd.FileID, err)
			}
		}
		fd.mu.Unlock()
	}
	return nil
}

// CloseFile syncs and closes one file.
func (dm *DiskManager) CloseFile(fileID uint32) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return fmt.Errorf("CloseFile: file %d not found", fileID)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.File == nil {
		return nil
	}
	if err := fd.File.Sync(); err != nil {
		return fmt.Errorf("CloseFile: sync before close: %w", err)
	}
	if err := fd.File.Close(); err != nil {
		return fmt.Errorf("CloseFile: %w", err)
	}
	fd.File = nil
	delete(dm.files, fileID)
	return nil
}

func (dm *DiskManager) GetFileDescriptor(fileID uint32) (*FileDescriptor, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return nil, fmt.Errorf("GetFileDescriptor: file %d not found", fileID)
	}
	return fd, nil
}
