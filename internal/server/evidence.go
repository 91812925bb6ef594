package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"bureau/internal/util"
	"bureau/pkg/ai"
	"bureau/pkg/domain"
)

const maxImageBytes = 10 << 20

type evidenceImageRequest struct {
	SlideNumber int    `json:"slide_number"`
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
}

type evidenceImageResponse struct {
	ImageURL      string       `json:"imageUrl"`
	RevisedPrompt string       `json:"revisedPrompt,omitempty"`
	Headline      *ai.Headline `json:"headline,omitempty"`
}

// handleEvidenceImage fabricates one piece of evidence for a slide and
// stores it as that slide's current image.
func (s *Server) handleEvidenceImage(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req evidenceImageRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	style := domain.ImageStyle(req.Style)
	if !domain.ValidStyle(style) {
		writeError(w, http.StatusBadRequest, "unknown style")
		return
	}
	outline, ok := s.sessions.Outline(r.Context(), clientID)
	if !ok {
		writeError(w, http.StatusConflict, "no slide structure yet; finish the workshop first")
		return
	}
	if !outlineHasSlide(outline, req.SlideNumber) {
		writeError(w, http.StatusBadRequest, "unknown slide_number")
		return
	}
	if s.imageLimiter != nil && !s.imageLimiter.Allow(clientID) {
		writeError(w, http.StatusTooManyRequests, "evidence lab is over capacity, slow down")
		return
	}

	result, err := s.images.GenerateImage(r.Context(), req.Prompt, style)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		util.LoggerFromContext(r.Context()).Error("image generation failed", "err", err)
		writeError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	s.sessions.UpsertImage(r.Context(), clientID, domain.EvidenceImage{
		SlideNumber: req.SlideNumber,
		ImageURL:    result.URL,
		Style:       style,
		Prompt:      req.Prompt,
	})

	resp := evidenceImageResponse{ImageURL: result.URL, RevisedPrompt: result.RevisedPrompt}
	if style == domain.StyleNewspaper && s.headlines != nil {
		topicTitle := ""
		if t, ok := s.sessions.Topic(r.Context(), clientID); ok {
			topicTitle = t.Title
		}
		headline, err := s.headlines.Write(r.Context(), topicTitle, req.Prompt)
		if err != nil {
			util.LoggerFromContext(r.Context()).Warn("headline generation failed", "err", err)
		} else {
			resp.Headline = &headline
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type convertRequest struct {
	ImageURL string `json:"imageUrl"`
}

// handleEvidenceConvert fetches a remote evidence image and returns it as a
// base64 data URI so the page can keep showing it after the source URL
// expires.
func (s *Server) handleEvidenceConvert(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req convertRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	parsed, err := url.Parse(req.ImageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "imageUrl must be an http(s) URL")
		return
	}

	data, contentType, err := s.fetchImage(r, req.ImageURL)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("image fetch failed", "url", req.ImageURL, "err", err)
		writeError(w, http.StatusBadGateway, "could not fetch image")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"dataUri": "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) fetchImage(r *http.Request, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.New(resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func outlineHasSlide(outline domain.SlideOutline, number int) bool {
	for _, slide := range outline {
		if slide.SlideNumber == number {
			return true
		}
	}
	return false
}
