package workbooks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"

	"github.com/vinodismyname/mcpdash/config"
)

// Handle pairs an in-memory workbook with metadata for TTL eviction and a
// write-version counter used to detect stale reads.
type Handle struct {
	ID        string
	Path      string
	File      *excelize.File
	LoadedAt  time.Time
	ExpiresAt time.Time
	version   int64
	mu        sync.RWMutex
}

// WorkbookGate coordinates capacity for open workbook handles (backed by
// runtime.Controller).
type WorkbookGate interface {
	AcquireWorkbook(ctx context.Context) error
	ReleaseWorkbook()
}

// PathValidator abstracts filesystem path validation. Implementations return
// a canonical absolute path when allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// ErrHandleNotFound indicates an unknown or expired handle ID.
var ErrHandleNotFound = errors.New("workbooks: handle not found")

// Manager owns workbook lifecycle: a TTL-bearing handle cache keyed by ID,
// with a secondary index by canonical path so repeated dashboard builds
// against the same source workbook reuse one handle.
type Manager struct {
	mu           sync.RWMutex
	handles      map[string]*Handle
	byPath       map[string]string // canonical path -> handle ID
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         WorkbookGate
	stopCh       chan struct{}
	cleanupWG    sync.WaitGroup
	validator    PathValidator
	openSF       singleflight.Group
}

// NewManager constructs a lifecycle manager. Pass ttl or cleanupEvery <= 0 to
// use defaults; gate and validator can be nil (tests); clock defaults to
// time.Now when nil.
func NewManager(ttl, cleanupEvery time.Duration, gate WorkbookGate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultWorkbookIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultWorkbookCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		handles:      make(map[string]*Handle),
		byPath:       make(map[string]string),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
	}
}

// SetPathValidator installs the security allow-list check applied on open.
func (m *Manager) SetPathValidator(v PathValidator) {
	m.validator = v
}

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and closes all open handles.
func (m *Manager) Close(ctx context.Context) error {
	close(m.stopCh)
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.handles {
		h.mu.Lock()
		_ = h.File.Close()
		h.mu.Unlock()
		delete(m.handles, id)
		delete(m.byPath, h.Path)
		if m.gate != nil {
			m.gate.ReleaseWorkbook()
		}
	}
	return nil
}

// Open opens a workbook from the given path, registers a TTL-bearing handle,
// and returns its ID plus the canonical path. Capacity is enforced via the
// gate when provided.
func (m *Manager) Open(ctx context.Context, path string) (string, string, error) {
	if err := m.acquire(ctx); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
	default:
		m.release()
		return "", "", fmt.Errorf("workbooks: unsupported format: %s", ext)
	}

	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			m.release()
			return "", "", err
		}
		path = canonical
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		m.release()
		return "", "", err
	}

	id := uuid.NewString()
	now := m.clock()
	h := &Handle{
		ID:        id,
		Path:      path,
		File:      f,
		LoadedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.handles[id] = h
	m.byPath[path] = id
	m.mu.Unlock()

	return id, path, nil
}

// GetOrOpenByPath reuses a cached handle for the canonical path when present,
// otherwise opens the workbook. Concurrent calls for the same path are
// collapsed into one open, so a burst of dashboard builds against one source
// workbook never strands duplicate handles. It returns the handle ID and
// canonical path.
func (m *Manager) GetOrOpenByPath(ctx context.Context, path string) (string, string, error) {
	canonical := path
	if m.validator != nil {
		c, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return "", "", err
		}
		canonical = c
	}

	v, err, _ := m.openSF.Do(canonical, func() (any, error) {
		m.mu.RLock()
		id, ok := m.byPath[canonical]
		m.mu.RUnlock()
		if ok {
			if _, alive := m.Get(id); alive {
				return id, nil
			}
		}
		id, _, err := m.Open(ctx, canonical)
		return id, err
	})
	if err != nil {
		return "", "", err
	}
	return v.(string), canonical, nil
}

// Adopt registers an existing excelize.File as a managed handle. Intended for
// tests and in-memory pipelines.
func (m *Manager) Adopt(ctx context.Context, f *excelize.File) (string, error) {
	if f == nil {
		return "", fmt.Errorf("workbooks: nil file")
	}
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := m.clock()
	h := &Handle{ID: id, File: f, LoadedAt: now, ExpiresAt: now.Add(m.ttl)}
	m.mu.Lock()
	m.handles[id] = h
	m.mu.Unlock()
	return id, nil
}

// Get returns the handle when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	// Refresh TTL on access (idle timeout semantics)
	now := m.clock()
	h.mu.Lock()
	h.ExpiresAt = now.Add(m.ttl)
	h.mu.Unlock()
	return h, true
}

// WithRead obtains a shared read lock for the handle and executes fn with the
// current write-version.
func (m *Manager) WithRead(id string, fn func(*excelize.File, int64) error) error {
	h, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(h.File, h.version)
}

// WithWrite obtains an exclusive write lock for the handle, executes fn, and
// bumps the write-version on success.
func (m *Manager) WithWrite(id string, fn func(*excelize.File) error) error {
	h, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := fn(h.File); err != nil {
		return err
	}
	h.version++
	return nil
}

// CloseHandle closes and removes a handle by ID, releasing gate capacity.
func (m *Manager) CloseHandle(ctx context.Context, id string) error {
	m.mu.Lock()
	h, ok := m.handles[id]
	if ok {
		delete(m.handles, id)
		delete(m.byPath, h.Path)
	}
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	h.mu.Lock()
	err := h.File.Close()
	h.mu.Unlock()
	m.release()
	return err
}

// EvictExpired scans for expired handles and closes them.
func (m *Manager) EvictExpired() {
	now := m.clock()
	var expired []*Handle

	m.mu.RLock()
	for _, h := range m.handles {
		h.mu.RLock()
		if now.After(h.ExpiresAt) {
			expired = append(expired, h)
		}
		h.mu.RUnlock()
	}
	m.mu.RUnlock()

	for _, h := range expired {
		h.mu.Lock()
		_ = h.File.Close()
		h.mu.Unlock()

		m.mu.Lock()
		delete(m.handles, h.ID)
		delete(m.byPath, h.Path)
		m.mu.Unlock()
		m.release()
	}
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireWorkbook(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseWorkbook()
}

// Expired reports whether the handle has reached its TTL.
func (h *Handle) Expired(now time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return now.After(h.ExpiresAt)
}
