// Package session persists per-client wizard state as four independently
// keyed JSON blobs. There is exactly one logical writer per client (the
// active session), so no cross-client coordination is needed.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"bureau/pkg/domain"
)

// Kind names one of the four persisted entries.
type Kind string

const (
	KindTopic       Kind = "topic"
	KindOutline     Kind = "outline"
	KindImages      Kind = "images"
	KindExportReady Kind = "export_ready"
)

var allKinds = []Kind{KindTopic, KindOutline, KindImages, KindExportReady}

// Backend is raw per-client key/value storage. Get returns ok=false when the
// key was never written.
type Backend interface {
	Get(ctx context.Context, clientID string, kind Kind) (value []byte, ok bool, err error)
	Set(ctx context.Context, clientID string, kind Kind, value []byte) error
	Delete(ctx context.Context, clientID string, kinds ...Kind) error
}

// Store wraps a Backend with the wizard's persistence contract: saves and
// loads never surface storage or serialization failures to the caller. A
// failed save is a no-op and a failed or unparsable load reads as absent;
// both are logged for diagnostics.
type Store struct {
	backend Backend
	log     *slog.Logger
}

// New builds a session store on top of the given backend.
func New(backend Backend, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: backend, log: log}
}

func (s *Store) save(ctx context.Context, clientID string, kind Kind, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("session save: marshal failed", "kind", kind, "err", err)
		return
	}
	if err := s.backend.Set(ctx, clientID, kind, data); err != nil {
		s.log.Error("session save: backend write failed", "kind", kind, "err", err)
	}
}

// load reports ok=false when the entry is absent, unreadable, or unparsable.
func (s *Store) load(ctx context.Context, clientID string, kind Kind, out any) bool {
	data, ok, err := s.backend.Get(ctx, clientID, kind)
	if err != nil {
		s.log.Error("session load: backend read failed", "kind", kind, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Error("session load: unmarshal failed", "kind", kind, "err", err)
		return false
	}
	return true
}

// SaveTopic persists the selected topic.
func (s *Store) SaveTopic(ctx context.Context, clientID string, t domain.Topic) {
	s.save(ctx, clientID, KindTopic, t)
}

// Topic returns the selected topic, or ok=false when none is stored.
func (s *Store) Topic(ctx context.Context, clientID string) (domain.Topic, bool) {
	var t domain.Topic
	ok := s.load(ctx, clientID, KindTopic, &t)
	return t, ok
}

// SaveOutline replaces the stored outline wholesale. Regeneration always
// overwrites; there is no merge path.
func (s *Store) SaveOutline(ctx context.Context, clientID string, o domain.SlideOutline) {
	s.save(ctx, clientID, KindOutline, o)
}

// Outline returns the stored outline, or ok=false when none is stored.
func (s *Store) Outline(ctx context.Context, clientID string) (domain.SlideOutline, bool) {
	var o domain.SlideOutline
	ok := s.load(ctx, clientID, KindOutline, &o)
	return o, ok
}

// SaveImages replaces the whole image collection.
func (s *Store) SaveImages(ctx context.Context, clientID string, imgs []domain.EvidenceImage) {
	s.save(ctx, clientID, KindImages, imgs)
}

// Images returns the stored image collection, or ok=false when none is stored.
func (s *Store) Images(ctx context.Context, clientID string) ([]domain.EvidenceImage, bool) {
	var imgs []domain.EvidenceImage
	ok := s.load(ctx, clientID, KindImages, &imgs)
	return imgs, ok
}

// UpsertImage replaces any stored image for the same slide number, then
// appends the new one. This is the only per-entry mutator for the
// collection; at most one image per slide number survives.
func (s *Store) UpsertImage(ctx context.Context, clientID string, img domain.EvidenceImage) {
	existing, _ := s.Images(ctx, clientID)
	out := make([]domain.EvidenceImage, 0, len(existing)+1)
	for _, e := range existing {
		if e.SlideNumber != img.SlideNumber {
			out = append(out, e)
		}
	}
	out = append(out, img)
	s.SaveImages(ctx, clientID, out)
}

// MarkExportReady records that an export has succeeded for this session.
func (s *Store) MarkExportReady(ctx context.Context, clientID string) {
	s.save(ctx, clientID, KindExportReady, true)
}

// ExportReady reports whether an export has succeeded for this session.
func (s *Store) ExportReady(ctx context.Context, clientID string) bool {
	var ready bool
	if !s.load(ctx, clientID, KindExportReady, &ready) {
		return false
	}
	return ready
}

// State loads the full session aggregate in one shot.
func (s *Store) State(ctx context.Context, clientID string) domain.SessionState {
	var state domain.SessionState
	if t, ok := s.Topic(ctx, clientID); ok {
		state.Topic = &t
	}
	if o, ok := s.Outline(ctx, clientID); ok {
		state.Outline = o
	}
	if imgs, ok := s.Images(ctx, clientID); ok {
		state.Images = imgs
	}
	state.ExportReady = s.ExportReady(ctx, clientID)
	return state
}

// Clear removes all four entries. Removal order is not observable to
// callers; a partial failure is logged and the rest are still attempted.
func (s *Store) Clear(ctx context.Context, clientID string) {
	if err := s.backend.Delete(ctx, clientID, allKinds...); err != nil {
		s.log.Error("session clear: backend delete failed", "err", err)
	}
}
