package signup

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/neontemple/temple-site/internal/rest"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/render"
	log "github.com/sirupsen/logrus"
)

const FallbackErrorMessage = "Signup failed. Please try again."

// FormView backs the join page. Note is the applicant's free text; Message is
// the backend's reply after a successful signup.
type FormView struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Note        string
	Message     string
	Error       string
	Success     bool
	FieldErrors FieldErrors
}

func viewOf(f Form) FormView {
	return FormView{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		Phone:       f.Phone,
		Note:        f.Message,
		FieldErrors: FieldErrors{},
	}
}

type Handler struct {
	client    coterie.Client
	renderer  *render.Renderer
	validator *Validator
}

func NewHandler(client coterie.Client, renderer *render.Renderer) *Handler {
	return &Handler{client: client, renderer: renderer, validator: NewValidator()}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, viewOf(Form{}))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error: "+err.Error(), http.StatusBadRequest)
		return
	}
	form := FormFromValues(r.PostForm)
	view := viewOf(form)

	if err := h.validator.Validate(form); err != nil {
		var fields FieldErrors
		if errors.As(err, &fields) {
			view.FieldErrors = fields
			view.Error = "Please correct the highlighted fields."
			h.render(w, r, http.StatusUnprocessableEntity, view)
			return
		}
		log.Errorf("signup: %v", err)
		view.Error = FallbackErrorMessage
		h.render(w, r, http.StatusInternalServerError, view)
		return
	}

	result, err := h.client.Signup(r.Context(), form.Request())
	if err != nil {
		log.Warnf("signup for %s failed: %v", form.Email, err)
		view.Error = coterie.MessageOf(err, FallbackErrorMessage)
		h.render(w, r, http.StatusBadGateway, view)
		return
	}

	log.Infof("new signup %s", result.ID)
	h.render(w, r, http.StatusOK, FormView{Success: true, Message: result.Message})
}

// API accepts the same form as JSON and answers with the backend's result.
func (h *Handler) API(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	form = form.Trimmed()

	if err := h.validator.Validate(form); err != nil {
		rest.WriteError(w, http.StatusUnprocessableEntity, "Invalid signup", err.Error())
		return
	}

	result, err := h.client.Signup(r.Context(), form.Request())
	if err != nil {
		log.Warnf("signup for %s failed: %v", form.Email, err)
		rest.WriteError(w, http.StatusBadGateway, coterie.MessageOf(err, FallbackErrorMessage), "")
		return
	}
	rest.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, view FormView) {
	var buf bytes.Buffer
	err := h.renderer.Page(&buf, "join", render.PageData{
		Title:     "Join",
		Data:      view,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
	})
	if err != nil {
		log.Errorf("failed to render join page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	rest.WriteHTML(w, status, buf.String())
}
