// Package stub is a reference implementation of the scoring endpoint wire
// contract, for local development and integration tests. It accepts each
// action both as a JSON POST body and as GET query parameters, mirroring the
// two transports the client may use. It is a collaborator for the exam
// runner, not a production scoring backend.
package stub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"exam-runner/internal/domain"
	"github.com/gorilla/mux"
)

// Store persists questions and submissions behind the stub endpoint.
type Store interface {
	Questions(ctx context.Context) ([]domain.Question, error)
	HasSubmission(ctx context.Context, email string) (bool, error)
	SaveSubmission(ctx context.Context, participant domain.Participant, answers []domain.AnswerRecord) error
}

// Server handles the three wire-contract actions against a Store.
type Server struct {
	store Store
}

func NewServer(store Store) *Server {
	return &Server{store: store}
}

// Router mounts the endpoint at "/" for both GET and POST.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handle).Methods(http.MethodGet, http.MethodPost)
	return r
}

type envelope struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	Questions    []domain.Question `json:"questions,omitempty"`
	HasTakenExam *bool             `json:"hasTakenExam,omitempty"`
	Saved        int               `json:"saved,omitempty"`
}

type incoming struct {
	Action      string                `json:"action"`
	Email       string                `json:"email"`
	StudentData domain.Participant    `json:"studentData"`
	Answers     []domain.AnswerRecord `json:"answers"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	req, err := decode(r)
	if err != nil {
		writeJSON(w, envelope{Success: false, Error: err.Error()})
		return
	}

	switch req.Action {
	case "getQuestions":
		questions, err := s.store.Questions(r.Context())
		if err != nil {
			log.Printf("stub: load questions: %v", err)
			writeJSON(w, envelope{Success: false, Error: "failed to load questions"})
			return
		}
		writeJSON(w, envelope{Success: true, Questions: questions})

	case "checkStudentStatus":
		if req.Email == "" {
			writeJSON(w, envelope{Success: false, Error: "email is required"})
			return
		}
		taken, err := s.store.HasSubmission(r.Context(), req.Email)
		if err != nil {
			log.Printf("stub: check status: %v", err)
			writeJSON(w, envelope{Success: false, Error: "failed to check status"})
			return
		}
		writeJSON(w, envelope{Success: true, HasTakenExam: &taken})

	case "saveResults":
		if req.StudentData.Email == "" || len(req.Answers) == 0 {
			writeJSON(w, envelope{Success: false, Error: "studentData and answers are required"})
			return
		}
		if err := s.store.SaveSubmission(r.Context(), req.StudentData, req.Answers); err != nil {
			log.Printf("stub: save submission: %v", err)
			writeJSON(w, envelope{Success: false, Error: "failed to save results"})
			return
		}
		writeJSON(w, envelope{Success: true, Saved: len(req.Answers)})

	default:
		writeJSON(w, envelope{Success: false, Error: "unknown action"})
	}
}

// decode reads the action from a JSON POST body or, for the GET fallback,
// from query parameters with JSON-encoded structured values.
func decode(r *http.Request) (incoming, error) {
	var req incoming
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	q := r.URL.Query()
	req.Action = q.Get("action")
	req.Email = q.Get("email")
	if raw := q.Get("studentData"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.StudentData); err != nil {
			return req, err
		}
	}
	if raw := q.Get("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Answers); err != nil {
			return req, err
		}
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, resp envelope) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("stub: write response: %v", err)
	}
}
