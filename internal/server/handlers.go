package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/history"
	"github.com/spigell/jobapply/internal/resolver"
	"github.com/spigell/jobapply/internal/stats"
)

type resolveRequest struct {
	Question string         `json:"question"`
	Field    map[string]any `json:"field"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	field, err := form.DecodeField(req.Field)
	if err != nil {
		s.fail(w, r, badRequest("%v", err))
		return
	}

	if strings.TrimSpace(req.Question) == "" && field.DisplayName() == "" {
		s.fail(w, r, badRequest("question is required"))
		return
	}

	answer, err := s.assistant.Resolve(r.Context(), resolver.Question{Text: req.Question, Field: field})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

type saveAnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) saveAnswer(w http.ResponseWriter, r *http.Request) {
	var req saveAnswerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.fail(w, r, badRequest("question is required"))
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.SaveAnswer(r.Context(), req.Question, req.Answer))
}

func (s *Server) trackJob(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decode(r, &raw); err != nil {
		s.fail(w, r, err)
		return
	}

	job, err := form.DecodeJob(raw)
	if err != nil {
		s.fail(w, r, badRequest("%v", err))
		return
	}
	if strings.TrimSpace(job.URL) == "" {
		s.fail(w, r, badRequest("url is required"))
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.TrackJob(r.Context(), job))
}

type markAppliedRequest struct {
	URL string `json:"url"`
}

func (s *Server) markApplied(w http.ResponseWriter, r *http.Request) {
	var req markAppliedRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	record, found := s.assistant.MarkApplied(r.Context(), req.URL)
	resp := map[string]any{"success": true, "found": found}
	if found {
		resp["record"] = record
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) conversation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.ConversationStatus())
}

func (s *Server) clearConversation(w http.ResponseWriter, r *http.Request) {
	s.assistant.ClearConversation(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type fieldRequest struct {
	Field      map[string]any `json:"field"`
	Value      string         `json:"value"`
	JobContext map[string]any `json:"jobContext"`
}

func (r fieldRequest) decode() (form.Field, *form.Job, error) {
	field, err := form.DecodeField(r.Field)
	if err != nil {
		return form.Field{}, nil, badRequest("%v", err)
	}
	if field.DisplayName() == "" {
		return form.Field{}, nil, badRequest("field label or name is required")
	}

	if r.JobContext == nil {
		return field, nil, nil
	}

	job, err := form.DecodeJob(r.JobContext)
	if err != nil {
		return form.Field{}, nil, badRequest("%v", err)
	}
	return field, &job, nil
}

func (s *Server) learn(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	field, job, err := req.decode()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.Learn(r.Context(), field, req.Value, job))
}

func (s *Server) recall(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	field, _, err := req.decode()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pattern, found := s.assistant.Recall(r.Context(), field)
	resp := map[string]any{"found": found}
	if found {
		resp["value"] = pattern.Value
		resp["confidence"] = resolver.High
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	field, job, err := req.decode()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	content, err := s.assistant.GenerateContent(r.Context(), field, job)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, s.assistant.Feed().Recent(r.Context(), limit))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.History(r.Context()))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Status(r.Context()))
}

func (s *Server) analyzeForm(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decode(r, &raw); err != nil {
		s.fail(w, r, err)
		return
	}

	page, err := form.DecodePage(raw)
	if err != nil {
		s.fail(w, r, badRequest("%v", err))
		return
	}
	if page.FieldCount() == 0 {
		s.fail(w, r, badRequest("forms with at least one field are required"))
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.AnalyzeForm(r.Context(), page))
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	field, _, err := req.decode()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.Recommend(r.Context(), field))
}

func (s *Server) saveApplication(w http.ResponseWriter, r *http.Request) {
	var app history.Application
	if err := decode(r, &app); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(app.URL) == "" {
		s.fail(w, r, badRequest("url is required"))
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.SaveApplication(r.Context(), app))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Stats().Get(r.Context()))
}

func (s *Server) incrementStat(w http.ResponseWriter, r *http.Request) {
	counter, err := stats.ParseCounter(chi.URLParam(r, "counter"))
	if err != nil {
		s.fail(w, r, badRequest("%v", err))
		return
	}

	writeJSON(w, http.StatusOK, s.assistant.Stats().Increment(r.Context(), counter))
}
