package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"bureau/pkg/domain"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"redis":  NewRedisBackend(mr.Addr(), "", "test:session", time.Hour),
	}
}

func sampleTopic() domain.Topic {
	return domain.Topic{
		ID:         7,
		Title:      "Moon Landing Was Filmed in a Parking Garage",
		Teaser:     "Level B2, next to the vending machines.",
		Absurdity:  4,
		Difficulty: domain.DifficultyOperative,
	}
}

func sampleOutline() domain.SlideOutline {
	return domain.SlideOutline{
		{SlideNumber: 1, Title: "The Setup", TalkingPoints: []string{"a", "b"}, SpeakerNotes: "n1", SuggestedImage: "i1"},
		{SlideNumber: 2, Title: "The Evidence", TalkingPoints: []string{"c"}, SpeakerNotes: "n2", SuggestedImage: "i2"},
		{SlideNumber: 3, Title: "The Close", TalkingPoints: []string{"d"}, SpeakerNotes: "n3", SuggestedImage: "i3"},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend, nil)
			const client = "client-1"

			if _, ok := store.Topic(ctx, client); ok {
				t.Fatalf("topic present before save")
			}
			store.SaveTopic(ctx, client, sampleTopic())
			got, ok := store.Topic(ctx, client)
			if !ok || !reflect.DeepEqual(got, sampleTopic()) {
				t.Fatalf("topic round trip: ok=%v got=%+v", ok, got)
			}

			store.SaveOutline(ctx, client, sampleOutline())
			outline, ok := store.Outline(ctx, client)
			if !ok || !reflect.DeepEqual(outline, sampleOutline()) {
				t.Fatalf("outline round trip: ok=%v got=%+v", ok, outline)
			}

			img := domain.EvidenceImage{SlideNumber: 1, ImageURL: "https://img/1", Style: domain.StyleLeakedPhoto, Prompt: "p"}
			store.SaveImages(ctx, client, []domain.EvidenceImage{img})
			imgs, ok := store.Images(ctx, client)
			if !ok || len(imgs) != 1 || imgs[0] != img {
				t.Fatalf("images round trip: ok=%v got=%+v", ok, imgs)
			}

			if store.ExportReady(ctx, client) {
				t.Fatalf("export ready before mark")
			}
			store.MarkExportReady(ctx, client)
			if !store.ExportReady(ctx, client) {
				t.Fatalf("export ready not persisted")
			}
		})
	}
}

func TestUpsertImageReplacesBySlideNumber(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend, nil)
			const client = "client-1"

			first := domain.EvidenceImage{SlideNumber: 2, ImageURL: "https://img/old", Style: domain.StyleSatellite, Prompt: "old"}
			store.UpsertImage(ctx, client, first)
			store.UpsertImage(ctx, client, domain.EvidenceImage{SlideNumber: 1, ImageURL: "https://img/1", Style: domain.StyleLeakedPhoto, Prompt: "p1"})

			replacement := domain.EvidenceImage{SlideNumber: 2, ImageURL: "https://img/new", Style: domain.StyleNewspaper, Prompt: "new"}
			store.UpsertImage(ctx, client, replacement)

			imgs, ok := store.Images(ctx, client)
			if !ok || len(imgs) != 2 {
				t.Fatalf("got %d images, want 2", len(imgs))
			}
			for _, img := range imgs {
				if img.SlideNumber == 2 && img.ImageURL != "https://img/new" {
					t.Fatalf("slide 2 image not replaced: %+v", img)
				}
			}
		})
	}
}

func TestUpsertImageIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), nil)
	img := domain.EvidenceImage{SlideNumber: 3, ImageURL: "https://img/3", Style: domain.StyleDeclassified, Prompt: "p"}
	store.UpsertImage(ctx, "c", img)
	store.UpsertImage(ctx, "c", img)
	imgs, _ := store.Images(ctx, "c")
	if len(imgs) != 1 {
		t.Fatalf("repeated identical upsert grew collection to %d", len(imgs))
	}
}

func TestClearRemovesAllKinds(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend, nil)
			const client = "client-1"
			store.SaveTopic(ctx, client, sampleTopic())
			store.SaveOutline(ctx, client, sampleOutline())
			store.UpsertImage(ctx, client, domain.EvidenceImage{SlideNumber: 1, ImageURL: "u", Style: domain.StyleLeakedPhoto, Prompt: "p"})
			store.MarkExportReady(ctx, client)

			store.Clear(ctx, client)

			state := store.State(ctx, client)
			if state.Topic != nil || state.Outline != nil || state.Images != nil || state.ExportReady {
				t.Fatalf("state not empty after clear: %+v", state)
			}
		})
	}
}

func TestSessionsAreIsolatedPerClient(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), nil)
	store.SaveTopic(ctx, "client-a", sampleTopic())
	if _, ok := store.Topic(ctx, "client-b"); ok {
		t.Fatalf("client-b can read client-a topic")
	}
}

type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string, Kind) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (failingBackend) Set(context.Context, string, Kind, []byte) error { return errBackendDown }
func (failingBackend) Delete(context.Context, string, ...Kind) error   { return errBackendDown }

func TestStoreSwallowsBackendFailures(t *testing.T) {
	ctx := context.Background()
	store := New(failingBackend{}, nil)
	// Must not panic or surface errors: save is a no-op, load reads absent.
	store.SaveTopic(ctx, "c", sampleTopic())
	if _, ok := store.Topic(ctx, "c"); ok {
		t.Fatalf("failed load reported present")
	}
	store.Clear(ctx, "c")
}

func TestLoadUnparsableReadsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, nil)
	if err := backend.Set(ctx, "c", KindTopic, []byte("{not json")); err != nil {
		t.Fatalf("seed backend: %v", err)
	}
	if _, ok := store.Topic(ctx, "c"); ok {
		t.Fatalf("unparsable entry reported present")
	}
}
