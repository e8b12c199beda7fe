// Package httpapi exposes the gamification engine as a JSON API on the
// gateway mux.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// Handler serves the REST routes. Quiz controllers are kept in memory,
// one per identity.
type Handler struct {
	accounts    usecase.AccountUsecase
	profile     usecase.ProfileUsecase
	ledger      usecase.XPLedger
	quizzes     usecase.QuizUsecase
	leaderboard usecase.LeaderboardUsecase
	events      http.Handler
	logger      logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*usecase.QuizSession
}

// NewHandler wires the usecases. events may be nil to disable the websocket route.
func NewHandler(
	accounts usecase.AccountUsecase,
	profile usecase.ProfileUsecase,
	ledger usecase.XPLedger,
	quizzes usecase.QuizUsecase,
	leaderboard usecase.LeaderboardUsecase,
	events http.Handler,
	logger logrus.FieldLogger,
) *Handler {
	return &Handler{
		accounts:    accounts,
		profile:     profile,
		ledger:      ledger,
		quizzes:     quizzes,
		leaderboard: leaderboard,
		events:      events,
		logger:      logger,
		sessions:    make(map[string]*usecase.QuizSession),
	}
}

type route struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

// Register attaches every route to mux.
func (h *Handler) Register(mux *runtime.ServeMux) error {
	routes := []route{
		{http.MethodPost, "/v1/accounts", h.signUp},
		{http.MethodPost, "/v1/login", h.login},
		{http.MethodPost, "/v1/logout", h.logout},
		{http.MethodGet, "/v1/achievements", h.achievements},
		{http.MethodGet, "/v1/leaderboard", h.top},
		{http.MethodGet, "/v1/users/{identity}/stats", h.stats},
		{http.MethodPost, "/v1/users/{identity}/xp", h.addXP},
		{http.MethodPut, "/v1/users/{identity}/language", h.setLanguage},
		{http.MethodPost, "/v1/users/{identity}/pro", h.togglePro},
		{http.MethodPost, "/v1/users/{identity}/quiz", h.startQuiz},
		{http.MethodPost, "/v1/users/{identity}/quiz:resume", h.resumeQuiz},
		{http.MethodPost, "/v1/users/{identity}/quiz:select", h.selectOption},
		{http.MethodPost, "/v1/users/{identity}/quiz:check", h.checkAnswer},
		{http.MethodPost, "/v1/users/{identity}/quiz:advance", h.advance},
		{http.MethodPost, "/v1/users/{identity}/quiz:retry", h.retry},
	}
	if h.events != nil {
		routes = append(routes, route{http.MethodGet, "/v1/events", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			h.events.ServeHTTP(w, r)
		}})
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handle); err != nil {
			return fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errMalformedBody
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	Identity string            `json:"identity"`
	Stats    *entity.UserStats `json:"stats,omitempty"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.SignUp(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, identityResponse{Identity: entity.NormalizeIdentity(req.Email)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.Login(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	identity := entity.NormalizeIdentity(req.Email)
	stats, err := h.profile.BeginSession(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{Identity: identity, Stats: stats})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	current, err := h.accounts.Current(r.Context())
	if err != nil && !errors.Is(err, entity.ErrNotLoggedIn) {
		writeError(w, err)
		return
	}
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if current != "" {
		h.mu.Lock()
		delete(h.sessions, current)
		h.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) achievements(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, map[string]any{"achievements": entity.Achievements()})
}

func (h *Handler) top(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	entries, err := h.leaderboard.Top(r.Context(), r.URL.Query().Get("identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request, params map[string]string) {
	stats, err := h.profile.Stats(r.Context(), params["identity"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type awardResponse struct {
	Stats    *entity.UserStats    `json:"stats"`
	XPEarned int                  `json:"xpEarned"`
	BonusXP  int                  `json:"bonusXp"`
	Unlocked []entity.Achievement `json:"unlocked"`
}

func toAwardResponse(a *usecase.XPAward) *awardResponse {
	if a == nil {
		return nil
	}
	unlocked := a.Unlocked
	if unlocked == nil {
		unlocked = []entity.Achievement{}
	}
	return &awardResponse{Stats: a.Stats, XPEarned: a.XPEarned, BonusXP: a.BonusXP, Unlocked: unlocked}
}

func (h *Handler) addXP(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	award, err := h.ledger.AddXP(r.Context(), params["identity"], req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAwardResponse(award))
}

func (h *Handler) setLanguage(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req struct {
		Language string `json:"language"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.profile.SetLanguage(r.Context(), params["identity"], entity.ParseLanguage(req.Language))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) togglePro(w http.ResponseWriter, r *http.Request, params map[string]string) {
	stats, err := h.profile.TogglePro(r.Context(), params["identity"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
