// Package projects manages the admin's project records.
//
// The Manager's in-memory list is authoritative. Every mutation writes the
// whole list to the kv store; a failed write keeps the change in memory and
// is reported as a warning (ErrPersistence), and the next mutation writes
// the full list again.
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/eringen/folio/kv"
	"github.com/eringen/folio/media"
)

// StoreKey is the kv key holding the JSON-encoded project list.
const StoreKey = "projects"

var (
	// ErrNotFound is returned by Update for an id that is not in the list.
	ErrNotFound = errors.New("project not found")
	// ErrPersistence wraps a failed write. The in-memory change stands.
	ErrPersistence = errors.New("changes may not survive a reload")
	// ErrNoImageStore is returned by AttachImage when no ImageStore is set.
	ErrNoImageStore = errors.New("no image store configured")
)

// Manager owns the ordered project list. It is safe for concurrent use;
// mutations are applied in the order they acquire the lock.
type Manager struct {
	mu      sync.RWMutex
	records []Record
	store   kv.Store
	images  media.ImageStore
	logger  *slog.Logger
	newID   func() string
}

// NewManager returns an empty Manager. Call Load to read the persisted list.
// images may be nil when uploads are not supported.
func NewManager(store kv.Store, images media.ImageStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		images: images,
		logger: logger,
		newID:  newID,
	}
}

// newID returns a time-ordered UUIDv7, falling back to a random UUID.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load reads the persisted list once. A missing key yields an empty list.
// An unreadable snapshot is logged and also yields an empty list; the store
// error itself is returned so callers can warn about it.
func (m *Manager) Load(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, StoreKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	if err != nil {
		m.logger.Warn("read projects", "error", err)
		return fmt.Errorf("read projects: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		m.logger.Warn("discarding unreadable project snapshot", "error", err)
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = m.newID()
		}
		if _, dup := seen[r.ID]; dup {
			m.logger.Warn("duplicate project id in snapshot, reassigning", "id", r.ID)
			r.ID = m.newID()
		}
		seen[r.ID] = struct{}{}
		m.records = append(m.records, r)
	}
	return nil
}

// List returns a copy of the records in insertion order, oldest first.
func (m *Manager) List() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, len(m.records))
	for i, r := range m.records {
		out[i] = r.clone()
	}
	return out
}

// Get returns the record with id.
func (m *Manager) Get(id string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.records[i].clone(), true
	}
	return Record{}, false
}

// Create validates d, appends a new record with a fresh id and the default
// status, and persists the list. On a persistence failure the record is
// still returned together with an error wrapping ErrPersistence.
func (m *Manager) Create(ctx context.Context, d Draft) (Record, error) {
	if v := Validate(d); len(v) > 0 {
		return Record{}, &ValidationError{Violations: v}
	}
	d = d.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	for m.indexOf(id) >= 0 {
		id = m.newID()
	}
	r := Record{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		GithubLink:  d.GithubLink,
		LiveLink:    d.LiveLink,
		Status:      DefaultStatus,
		Tags:        d.Tags,
	}
	m.records = append(m.records, r)
	return r.clone(), m.persist(ctx)
}

// Update validates d and replaces the mutable fields of record id in place.
// Position, id and status are kept. It never creates a record.
func (m *Manager) Update(ctx context.Context, id string, d Draft) (Record, error) {
	if v := Validate(d); len(v) > 0 {
		return Record{}, &ValidationError{Violations: v}
	}
	d = d.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	r := &m.records[i]
	old := r.Image
	r.Title = d.Title
	r.Description = d.Description
	r.Image = d.Image
	r.GithubLink = d.GithubLink
	r.LiveLink = d.LiveLink
	r.Tags = d.Tags
	out, err := r.clone(), m.persist(ctx)
	if err == nil && old != d.Image {
		m.releaseImage(ctx, old)
	}
	return out, err
}

// Delete removes record id if present and persists the list. Deleting an
// unknown id is a no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil
	}
	ref := m.records[i].Image
	m.records = append(m.records[:i], m.records[i+1:]...)
	// The durable snapshot still references ref until a write succeeds.
	if err := m.persist(ctx); err != nil {
		return err
	}
	m.releaseImage(ctx, ref)
	return nil
}

// AttachImage processes the uploaded image, stores it through the
// ImageStore and sets d.Image to the durable URL. d is left untouched on
// error.
func (m *Manager) AttachImage(ctx context.Context, d *Draft, name string, r io.Reader) error {
	if m.images == nil {
		return ErrNoImageStore
	}
	img, err := media.Process(r, name)
	if err != nil {
		return err
	}
	url, err := m.images.Put(ctx, img.Name, img.Data, "image/jpeg")
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}
	d.Image = url
	return nil
}

// DiscardImage removes an image stored by AttachImage for a draft that was
// never saved. An image some record uses is kept.
func (m *Manager) DiscardImage(ctx context.Context, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseImage(ctx, ref)
}

// releaseImage removes ref from the ImageStore once no record uses it.
// Failures only leave an orphaned file behind, so they are logged. Callers
// hold m.mu.
func (m *Manager) releaseImage(ctx context.Context, ref string) {
	if m.images == nil || ref == "" {
		return
	}
	for _, r := range m.records {
		if r.Image == ref {
			return
		}
	}
	if err := m.images.Delete(ctx, ref); err != nil {
		m.logger.Warn("remove project image", "image", ref, "error", err)
	}
}

func (m *Manager) indexOf(id string) int {
	for i := range m.records {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole list. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context) error {
	records := m.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := m.store.Set(ctx, StoreKey, string(data)); err != nil {
		m.logger.Warn("persist projects", "error", err, "count", len(records))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
