package banner

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/neontemple/temple-site/internal/rest"
	"github.com/neontemple/temple-site/pkg/render"
	log "github.com/sirupsen/logrus"
)

type SlideDTO struct {
	State State  `json:"state"`
	Slide *Slide `json:"slide,omitempty"`
}

type Handler struct {
	controller *Controller
	renderer   *render.Renderer
}

func NewHandler(controller *Controller, renderer *render.Renderer) *Handler {
	return &Handler{controller: controller, renderer: renderer}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, h.dto())
}

// Fragment renders the banner on its own. Nothing to show answers 204.
func (h *Handler) Fragment(w http.ResponseWriter, r *http.Request) {
	view := h.controller.View()
	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	view.CSRFToken = csrf.Token(r)
	html, err := h.renderer.FeaturedBanner(view)
	if err != nil {
		log.Errorf("failed to render featured banner: %v", err)
		http.Error(w, "Failed to render banner", http.StatusInternalServerError)
		return
	}
	rest.WriteHTML(w, http.StatusOK, string(html))
}

func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid slide index", err.Error())
		return
	}
	if err := h.controller.GoTo(index); err != nil {
		if errors.Is(err, ErrIndexOutOfRange) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid slide index", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("banner: moved to slide %d", index)
	rest.WriteJSON(w, http.StatusOK, h.dto())
}

// Jump handles the banner's form controls: it moves to the slide and sends
// the browser back to the page it came from.
func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err == nil {
		err = h.controller.GoTo(index)
	}
	if err != nil {
		http.Error(w, "Invalid slide index", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.controller.PointerEnter()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.controller.PointerLeave()
	w.WriteHeader(http.StatusNoContent)
}

// returnPath is the same-host referer, or the home page.
func returnPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return "/"
	}
	return ref.RequestURI()
}

func (h *Handler) dto() SlideDTO {
	dto := SlideDTO{State: h.controller.State()}
	if slide, ok := h.controller.Current(); ok {
		dto.Slide = &slide
	}
	return dto
}
