package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/tutor"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// GradeEssayRequest is the body of POST /essays/grade
type GradeEssayRequest struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Theme     string    `json:"theme"`
	Text      string    `json:"text"`
}

// ThemesResponse wraps the generated essay themes
type ThemesResponse struct {
	Themes []types.EssayTheme `json:"themes"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req tutor.FeedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, s.tutor.GenerateAnswerFeedback(r.Context(), req))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerIDParam(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	subject, err := subjectParam(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, s.tutor.AnalyzeProgress(r.Context(), learnerID, subject))
}

func (s *Server) handleMotivation(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerIDParam(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	msgContext := strings.TrimSpace(r.URL.Query().Get("context"))
	s.jsonResponse(w, http.StatusOK, s.tutor.GenerateMotivationalMessage(r.Context(), learnerID, msgContext))
}

func (s *Server) handleEssayThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.tutor.GenerateEssayThemes(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ThemesResponse{Themes: themes})
}

func (s *Server) handleGradeEssay(w http.ResponseWriter, r *http.Request) {
	var req GradeEssayRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LearnerID == uuid.Nil {
		err := &ErrValidation{Field: "learner_id", Message: "required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	evaluation, err := s.tutor.GradeEssay(r.Context(), req.LearnerID, req.Theme, req.Text)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, evaluation)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func learnerIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("learner_id"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &ErrValidation{Field: "learner_id", Message: "must be a UUID"}
	}
	return id, nil
}

// subjectParam returns the upper-cased subject code ("MT", "LC", ...)
func subjectParam(r *http.Request) (string, error) {
	subject := strings.ToUpper(strings.TrimSpace(r.PathValue("subject")))
	if subject == "" || len(subject) > 8 || strings.IndexFunc(subject, notLetter) >= 0 {
		return "", &ErrValidation{Field: "subject", Message: "must be a subject code"}
	}
	return subject, nil
}

func notLetter(r rune) bool { return !unicode.IsLetter(r) }
