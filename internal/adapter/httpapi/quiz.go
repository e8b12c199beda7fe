package httpapi

import (
	"net/http"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

type quizResponse struct {
	Session usecase.QuizSnapshot `json:"session"`
	Correct *bool                `json:"correct,omitempty"`
	Award   *awardResponse       `json:"award,omitempty"`
}

func (h *Handler) setSession(identity string, session *usecase.QuizSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[entity.NormalizeIdentity(identity)] = session
}

// withSession runs fn on the identity's controller while holding the lock,
// so transitions for one identity never interleave.
func (h *Handler) withSession(w http.ResponseWriter, identity string, fn func(*usecase.QuizSession) (*quizResponse, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.sessions[entity.NormalizeIdentity(identity)]
	if !ok {
		writeError(w, entity.ErrNoQuizSession)
		return
	}
	resp, err := fn(session)
	if err != nil {
		writeError(w, err)
		return
	}
	resp.Session = session.Snapshot()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req struct {
		Questions []entity.QuizQuestion `json:"questions"`
		Summary   string                `json:"summary"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.quizzes.Start(r.Context(), params["identity"], req.Questions, req.Summary)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSession(params["identity"], session)
	writeJSON(w, http.StatusCreated, quizResponse{Session: session.Snapshot()})
}

func (h *Handler) resumeQuiz(w http.ResponseWriter, r *http.Request, params map[string]string) {
	session, err := h.quizzes.Resume(r.Context(), params["identity"])
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSession(params["identity"], session)
	writeJSON(w, http.StatusOK, quizResponse{Session: session.Snapshot()})
}

func (h *Handler) selectOption(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req struct {
		Option string `json:"option"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, params["identity"], func(s *usecase.QuizSession) (*quizResponse, error) {
		return &quizResponse{}, s.Select(req.Option)
	})
}

func (h *Handler) checkAnswer(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.withSession(w, params["identity"], func(s *usecase.QuizSession) (*quizResponse, error) {
		correct, err := s.CheckAnswer(r.Context())
		if err != nil {
			return nil, err
		}
		return &quizResponse{Correct: &correct}, nil
	})
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.withSession(w, params["identity"], func(s *usecase.QuizSession) (*quizResponse, error) {
		award, err := s.Advance(r.Context())
		if err != nil {
			return nil, err
		}
		return &quizResponse{Award: toAwardResponse(award)}, nil
	})
}

func (h *Handler) retry(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.withSession(w, params["identity"], func(s *usecase.QuizSession) (*quizResponse, error) {
		return &quizResponse{}, s.Retry(r.Context())
	})
}
