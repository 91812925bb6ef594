package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bureau/internal/deck"
	"bureau/internal/util"
	"bureau/internal/wizard"
	"bureau/pkg/domain"
)

const (
	dossierContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	archiveLinkExpiry  = 24 * time.Hour
)

// handleExport assembles the final .pptx dossier and streams it as a
// download. The mission must have reached the complete stage; otherwise the
// response names the stage to go back to.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	state := s.sessions.State(r.Context(), clientID)
	if allowed, redirect := wizard.Entry(wizard.StageComplete, state); !allowed {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "mission incomplete",
			"redirect": redirect.String(),
		})
		return
	}

	log := util.LoggerFromContext(r.Context())
	images := s.collectImages(r, state.Images)

	d := deck.Deck{Topic: *state.Topic, Outline: state.Outline, Images: images}
	var buf bytes.Buffer
	if err := deck.Encode(&buf, d); err != nil {
		log.Error("dossier encode failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not build the dossier")
		return
	}

	s.sessions.MarkExportReady(r.Context(), clientID)

	fileName := deck.FileName(*state.Topic)
	if s.archive != nil {
		key := clientID + "/" + fileName
		if err := s.archive.PutDossier(r.Context(), key, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
			log.Error("dossier archive failed", "key", key, "err", err)
		} else if link, err := s.archive.PresignGet(r.Context(), key, archiveLinkExpiry); err == nil {
			w.Header().Set("X-Archive-URL", link)
		}
	}

	w.Header().Set("Content-Type", dossierContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// collectImages resolves stored evidence references into raw bytes. Remote
// URLs are fetched concurrently; data URIs decode in place. A slide whose
// image cannot be resolved simply renders the redaction placeholder.
func (s *Server) collectImages(r *http.Request, evidence []domain.EvidenceImage) map[int]deck.SlideImage {
	log := util.LoggerFromContext(r.Context())
	images := make(map[int]deck.SlideImage, len(evidence))

	var mu sync.Mutex
	g, _ := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for _, ev := range evidence {
		g.Go(func() error {
			var img deck.SlideImage
			switch {
			case strings.HasPrefix(ev.ImageURL, "data:"):
				decoded, contentType, err := decodeDataURI(ev.ImageURL)
				if err != nil {
					log.Warn("evidence data uri unreadable", "slide", ev.SlideNumber, "err", err)
					return nil
				}
				img = deck.SlideImage{Data: decoded, ContentType: contentType}
			default:
				data, contentType, err := s.fetchImage(r, ev.ImageURL)
				if err != nil {
					log.Warn("evidence fetch failed", "slide", ev.SlideNumber, "err", err)
					return nil
				}
				img = deck.SlideImage{Data: data, ContentType: contentType}
			}
			mu.Lock()
			images[ev.SlideNumber] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data uri")
	}
	contentType, _, _ := strings.Cut(meta, ";")
	if contentType == "" {
		contentType = "image/png"
	}
	if !strings.Contains(meta, "base64") {
		return nil, "", fmt.Errorf("unsupported data uri encoding")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data uri: %w", err)
	}
	return decoded, contentType, nil
}
