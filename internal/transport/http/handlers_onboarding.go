package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kayit/internal/location"
	"kayit/internal/onboarding"
	"kayit/internal/platform/logger"
	"kayit/internal/platform/middleware"
	"kayit/internal/session"
	dErrors "kayit/pkg/domain-errors"
	"kayit/pkg/platform/httputil"
	"kayit/pkg/requestcontext"
)

const (
	defaultLanguageCode = "TR"
	maxDraftBytes       = 1 << 20
)

// SessionOpener opens or resumes the registration session of a token.
type SessionOpener interface {
	Open(ctx context.Context, token string) *session.Session
}

// LocationLoader loads a country's location hierarchy.
type LocationLoader interface {
	Load(ctx context.Context, token, languageCode, countryCode string) location.Hierarchy
}

// Submitter runs an onboarding submission.
type Submitter interface {
	Submit(ctx context.Context, sess onboarding.SessionView, draft onboarding.Draft) onboarding.Result
}

// OnboardingHandler exposes the registration flow to the landing page.
type OnboardingHandler struct {
	sessions       SessionOpener
	locations      LocationLoader
	submitter      Submitter
	logger         *slog.Logger
	requestTimeout time.Duration
	tickInterval   time.Duration
	rateLimit      func(http.Handler) http.Handler
}

// HandlerOption configures an OnboardingHandler.
type HandlerOption func(*OnboardingHandler)

// WithRateLimit guards every route under /onboarding/{token} with mw.
func WithRateLimit(mw func(http.Handler) http.Handler) HandlerOption {
	return func(h *OnboardingHandler) {
		h.rateLimit = mw
	}
}

// NewOnboardingHandler creates the handler. A zero tickInterval defaults to
// one second, a zero requestTimeout to thirty seconds.
func NewOnboardingHandler(
	sessions SessionOpener,
	locations LocationLoader,
	submitter Submitter,
	logger *slog.Logger,
	requestTimeout, tickInterval time.Duration,
	opts ...HandlerOption,
) *OnboardingHandler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	h := &OnboardingHandler{
		sessions:       sessions,
		locations:      locations,
		submitter:      submitter,
		logger:         logger,
		requestTimeout: requestTimeout,
		tickInterval:   tickInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the onboarding routes with the chi router.
func (h *OnboardingHandler) Register(r chi.Router) {
	r.Route("/onboarding/{token}", func(r chi.Router) {
		if h.rateLimit != nil {
			r.Use(h.rateLimit)
		}
		// Streams stay open for the whole window and must not be cut by the
		// request timeout.
		r.Get("/session/countdown", h.handleCountdown)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(h.requestTimeout))
			r.Use(middleware.ContentTypeJSON)
			r.Get("/session", h.handleGetSession)
			r.Get("/locations", h.handleGetLocations)
			r.Post("/submit", h.handleSubmit)
		})
	})
}

type locationsResponse struct {
	Status    location.Status    `json:"status"`
	Selection location.Selection `json:"selection"`
	location.Dropdowns
	Message string `json:"message,omitempty"`
}

func (h *OnboardingHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	st := h.sessions.Open(r.Context(), token).State()
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *OnboardingHandler) handleCountdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	sess := h.sessions.Open(ctx, token)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sess.Run(ctx, h.tickInterval, func(st session.State) {
		payload, err := json.Marshal(st)
		if err != nil {
			h.logger.ErrorContext(ctx, "encode countdown state", "error", err)
			return
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	})
}

func (h *OnboardingHandler) handleGetLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	q := r.URL.Query()

	countryCode := strings.ToUpper(strings.TrimSpace(q.Get("countryCode")))
	if countryCode == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "countryCode is required"))
		return
	}
	languageCode := strings.ToUpper(strings.TrimSpace(q.Get("languageCode")))
	if languageCode == "" {
		languageCode = defaultLanguageCode
	}

	if err := requireValid(h.sessions.Open(ctx, token).State()); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sel := location.Selection{Country: countryCode}.
		With(location.LevelState, q.Get("stateCode")).
		With(location.LevelCity, q.Get("cityCode"))

	hierarchy := h.locations.Load(ctx, token, languageCode, countryCode)
	if hierarchy.Status == location.StatusUnavailable {
		h.logger.WarnContext(ctx, "location hierarchy unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"token_fp", logger.Fingerprint(token),
		)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, locationsResponse{
			Status:    location.StatusUnavailable,
			Selection: sel,
			Dropdowns: location.Dropdowns{States: []location.Node{}, Cities: []location.Node{}, Districts: []location.Node{}},
			Message:   "location data is temporarily unavailable, please retry",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, locationsResponse{
		Status:    location.StatusAvailable,
		Selection: sel,
		Dropdowns: location.DropdownsFor(hierarchy.Tree, sel),
	})
}

func (h *OnboardingHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	var draft onboarding.Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes))
	if err := dec.Decode(&draft); err != nil {
		h.logger.WarnContext(ctx, "invalid onboarding draft",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sess := h.sessions.Open(ctx, token)
	res := h.submitter.Submit(ctx, sess, draft)
	httputil.WriteJSON(w, statusForResult(res), res)
}

func statusForResult(res onboarding.Result) int {
	switch res.Status {
	case onboarding.StatusCompleted:
		return http.StatusCreated
	case onboarding.StatusPartial:
		return http.StatusMultiStatus
	default:
		if res.Code == "" {
			return http.StatusBadRequest
		}
		return httputil.StatusFor(res.Code)
	}
}

func requireValid(st session.State) error {
	switch st.Status {
	case session.StatusValid:
		return nil
	case session.StatusExpired:
		return dErrors.New(dErrors.CodeSessionExpired, "registration window has expired")
	default:
		return dErrors.New(dErrors.CodeSessionInvalid, "registration link is not valid")
	}
}
