package httpx

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/target/golinks/internal/domain/model"
	"github.com/target/golinks/internal/http/validation"
	"github.com/target/golinks/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LinkServiceInterface defines the interface for link service operations.
type LinkServiceInterface interface {
	Register(ctx context.Context, in service.RegisterInput) (string, error)
	Resolve(ctx context.Context, name string) (string, error)
	GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error)
}

// LinkHandlers provides HTTP handlers for link registration and resolution.
type LinkHandlers struct {
	Svc LinkServiceInterface
	// ShortURL renders the public URL for a short name.
	ShortURL func(name string) string
	Logger   *slog.Logger

	adminTemplate *template.Template
}

// NewLinkHandlers constructs LinkHandlers, parsing the admin page template.
func NewLinkHandlers(svc LinkServiceInterface, shortURL func(string) string, logger *slog.Logger) (*LinkHandlers, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/admin.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse admin template: %w", err)
	}
	return &LinkHandlers{Svc: svc, ShortURL: shortURL, Logger: logger, adminTemplate: tmpl}, nil
}

// fieldError carries the name of an invalid field and the error description,
// so the frontend can attach the message to the right input.
type fieldError struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// addResponse is the response body of the add endpoint.
type addResponse struct {
	Success    bool         `json:"success"`
	FormErrors []fieldError `json:"form_errors"`
	Error      string       `json:"error,omitempty"`
	URL        string       `json:"url,omitempty"`
	AllowForce bool         `json:"allow_force"`
}

func addOK(url string) addResponse {
	return addResponse{Success: true, FormErrors: []fieldError{}, URL: url}
}

// addDialog asks the frontend to prompt for confirmation; retrying with force
// set would succeed.
func addDialog(message string) addResponse {
	return addResponse{Success: false, FormErrors: []fieldError{}, Error: message, AllowForce: true}
}

func addError(message string, formErrors []fieldError) addResponse {
	if formErrors == nil {
		formErrors = []fieldError{}
	}
	return addResponse{Success: false, FormErrors: formErrors, Error: message}
}

// addRequest is the body of the add endpoint.
type addRequest struct {
	Name  *string `json:"name"`
	URL   string  `json:"url"`
	Force bool    `json:"force"`
}

// validate collects per-field errors without touching the database.
func (in addRequest) validate() []fieldError {
	var errs []fieldError
	if in.Name != nil {
		if desc := validation.LinkName()(*in.Name); desc != "" {
			errs = append(errs, fieldError{Name: "name", Description: desc})
		}
	}
	if desc := validation.AbsoluteURL()(in.URL); desc != "" {
		errs = append(errs, fieldError{Name: "url", Description: desc})
	}
	return errs
}

// Add handles link registration.
// POST /api/v1/add.
func (h *LinkHandlers) Add(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if !caller.Authenticated {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var in addRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteJSON(w, http.StatusBadRequest, addError("Invalid request", nil))
		return
	}

	if formErrors := in.validate(); len(formErrors) > 0 {
		WriteJSON(w, http.StatusOK, addError("Invalid request", formErrors))
		return
	}

	name, err := h.Svc.Register(r.Context(), service.RegisterInput{
		UserID:    caller.Identity.ID,
		Name:      in.Name,
		TargetURL: in.URL,
		Force:     in.Force,
	})
	if err != nil {
		WriteJSON(w, http.StatusOK, h.addFailure(r.Context(), err))
		return
	}

	WriteJSON(w, http.StatusOK, addOK(h.ShortURL(name)))
}

// addFailure maps a registration error onto the response the frontend acts
// on: a confirmation dialog when force would succeed, a plain error otherwise.
func (h *LinkHandlers) addFailure(ctx context.Context, err error) addResponse {
	var targetExists *service.TargetExistsError
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		return addError("You do not have permission to create this link", nil)
	case errors.Is(err, service.ErrNameExists):
		return addDialog("The name already exists. Would you like to override?")
	case errors.As(err, &targetExists):
		return addDialog(fmt.Sprintf(
			"This already has a link with name '%s'. Are you sure you want to create a new link?",
			targetExists.Name))
	default:
		h.Logger.ErrorContext(ctx, "link registration failed", "error", err)
		return addError("Could not create the link", nil)
	}
}

// Resolve redirects a short name to its registered target.
// GET /{name}.
func (h *LinkHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	target, err := h.Svc.Resolve(r.Context(), name)
	if err != nil {
		if !errors.Is(err, service.ErrLinkNotFound) {
			h.Logger.ErrorContext(r.Context(), "link resolution failed", "name", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Root dispatches the entry page on session state.
// GET /.
func (h *LinkHandlers) Root(w http.ResponseWriter, r *http.Request) {
	if CallerFromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// adminPageData feeds the admin template.
type adminPageData struct {
	Prefixes        []model.PrefixGrant
	AllowCustomName bool
}

// Admin renders the shortener page with the caller's prefix grants.
// GET /admin.
func (h *LinkHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if !caller.Authenticated {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	grants, err := h.Svc.GrantsFor(r.Context(), caller.Identity.ID)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "loading grants failed", "error", err)
		grants = nil
	}

	// Render to a buffer first so a template error never produces a torn page.
	var buf bytes.Buffer
	data := adminPageData{Prefixes: grants, AllowCustomName: len(grants) > 0}
	if err := h.adminTemplate.Execute(&buf, data); err != nil {
		h.Logger.ErrorContext(r.Context(), "admin template failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		// Client gone; nothing to do.
		return
	}
}
