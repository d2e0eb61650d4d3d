package video

import (
	"context"
	"net/http"
	"sync"

	"github.com/neontemple/temple-site/internal/rest"
)

type Source interface {
	Fetch(ctx context.Context, playlistID string) []Video
}

// Service keeps the last fetched playlist so page requests never wait on the
// relays.
type Service struct {
	source     Source
	playlistID string

	mu     sync.RWMutex
	videos []Video
}

func NewService(source Source, playlistID string) *Service {
	return &Service{source: source, playlistID: playlistID, videos: []Video{}}
}

// Refresh replaces the cached list. An empty fetch clears it.
func (s *Service) Refresh(ctx context.Context) {
	if s.playlistID == "" {
		return
	}
	videos := s.source.Fetch(ctx, s.playlistID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = videos
}

func (s *Service) Videos() []Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Video(nil), s.videos...)
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	videos := h.service.Videos()
	if videos == nil {
		videos = []Video{}
	}
	rest.WriteJSON(w, http.StatusOK, videos)
}
