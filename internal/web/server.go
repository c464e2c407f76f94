// Package web is the browser front end: it renders the due queue, review
// flow, practice quiz and concept map, and forwards every action to the
// collection manager. No scheduling logic lives here.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/declanmoran/studydeck/internal/deck"
	"github.com/declanmoran/studydeck/internal/mindmap"
	"github.com/declanmoran/studydeck/internal/scheduler"
	"github.com/declanmoran/studydeck/internal/session"
	"github.com/declanmoran/studydeck/internal/store"
)

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP front end.
type Server struct {
	mgr       *deck.Manager
	tree      *mindmap.Tree
	st        store.Store
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(mgr *deck.Manager, tree *mindmap.Tree, st store.Store) (*Server, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		mgr:       mgr,
		tree:      tree,
		st:        st,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex)
	s.router.HandleFunc("/deck", s.handleDeck)
	s.router.HandleFunc("/cards", s.handleCards)
	s.router.HandleFunc("/cards/", s.handleDeleteCard)
	s.router.HandleFunc("/review", s.handleNextReview)
	s.router.HandleFunc("/review/answer/", s.handleShowAnswer)
	s.router.HandleFunc("/review/", s.handlePostReview)
	s.router.HandleFunc("/quiz", s.handleQuiz)
	s.router.HandleFunc("/quiz/", s.handleQuizAnswer)
	s.router.HandleFunc("/map", s.handleMap)
	s.router.HandleFunc("/map/root", s.handleMapRoot)
	s.router.HandleFunc("/map/", s.handleNode)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/deck", http.StatusSeeOther)
}

// handleDeck shows the collection summary and due count.
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	due := s.mgr.Due(time.Now())
	s.render(w, "deck", map[string]any{
		"User":     s.mgr.UserKey(),
		"Total":    s.mgr.Len(),
		"DueCount": len(due),
	})
}

// handleCards lists all cards and accepts manual card creation.
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "cards", map[string]any{
			"Cards": s.mgr.Cards(),
		})
	case http.MethodPost:
		_, err := s.mgr.Create(
			r.PostFormValue("question"),
			r.PostFormValue("answer"),
			r.PostFormValue("topic"),
			time.Now(),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/cards", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDeleteCard removes a card. Mind map tags pointing at it become
// dangling and are skipped during card-set resolution.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/cards/")
	idStr, action, _ := strings.Cut(rest, "/")
	if action != "delete" {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}
	if err := s.mgr.Delete(id); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/cards", http.StatusSeeOther)
}

// handleNextReview shows the front of the first due card.
func (s *Server) handleNextReview(w http.ResponseWriter, r *http.Request) {
	due := session.Study(s.mgr.Due(time.Now()))
	if len(due) == 0 {
		s.render(w, "review_done", nil)
		return
	}
	s.render(w, "card_front", due[0])
}

// handleShowAnswer shows the back of a card with grade buttons.
func (s *Server) handleShowAnswer(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/review/answer/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}
	card, ok := s.mgr.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "card_back", card)
}

// handlePostReview grades a card and moves to the next due one.
func (s *Server) handlePostReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/review/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}
	grade, err := strconv.Atoi(r.PostFormValue("grade"))
	if err != nil {
		http.Error(w, "Invalid grade", http.StatusBadRequest)
		return
	}
	outcome, err := scheduler.ParseOutcome(grade)
	if err != nil {
		http.Error(w, "Invalid grade", http.StatusBadRequest)
		return
	}

	if _, err := s.mgr.Review(id, outcome, time.Now()); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

// handleQuiz builds a multiple-choice question from the due queue.
func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	cards := s.mgr.Cards()
	due := s.mgr.Due(time.Now())
	target := cards
	if len(due) > 0 {
		target = due
	}
	if len(target) == 0 {
		s.render(w, "quiz_empty", nil)
		return
	}

	q, err := session.MultipleChoice(cards, target[0], session.DefaultDistractors)
	if err != nil {
		s.render(w, "quiz_empty", nil)
		return
	}
	s.render(w, "quiz", q)
}

// handleQuizAnswer checks a submitted option against the card's answer.
func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/quiz/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}
	card, ok := s.mgr.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	chosen := r.PostFormValue("option")
	s.render(w, "quiz_result", map[string]any{
		"Correct": chosen == card.Answer,
		"Chosen":  chosen,
		"Answer":  card.Answer,
	})
}

// handleMap shows the concept tree, or a form to create its root.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.render(w, "map", map[string]any{
		"Root": s.tree.Root(),
	})
}

// handleMapRoot creates (or replaces) the tree root.
func (s *Server) handleMapRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	title := strings.TrimSpace(r.PostFormValue("title"))
	if title == "" {
		http.Error(w, "Title cannot be empty", http.StatusBadRequest)
		return
	}
	s.tree.CreateRoot(title)
	if err := s.saveTree(); err != nil {
		http.Error(w, "Failed to save mind map", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/map", http.StatusSeeOther)
}

// handleNode shows one node with its study set and taggable cards, and
// accepts child creation and card tagging.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/map/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid node id", http.StatusBadRequest)
		return
	}
	node := s.tree.FindNode(id)
	if node == nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case r.Method == http.MethodGet && action == "":
		cards := s.mgr.Cards()
		s.render(w, "node", map[string]any{
			"Node":      node,
			"Study":     mindmap.CardsForStudy(node, cards),
			"Available": mindmap.AvailableForTagging(node, cards),
		})

	case r.Method == http.MethodPost && action == "child":
		title := strings.TrimSpace(r.PostFormValue("title"))
		if title == "" {
			http.Error(w, "Title cannot be empty", http.StatusBadRequest)
			return
		}
		s.tree.AddChild(node, title)
		if err := s.saveTree(); err != nil {
			http.Error(w, "Failed to save mind map", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/map/"+idStr, http.StatusSeeOther)

	case r.Method == http.MethodPost && (action == "tag" || action == "untag"):
		cardID, err := strconv.ParseInt(r.PostFormValue("card_id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid card id", http.StatusBadRequest)
			return
		}
		if action == "tag" {
			s.tree.TagCard(node, cardID)
		} else {
			s.tree.UntagCard(node, cardID)
		}
		if err := s.saveTree(); err != nil {
			http.Error(w, "Failed to save mind map", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/map/"+idStr, http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) saveTree() error {
	if err := s.st.SaveTree(s.mgr.UserKey(), s.tree.Records()); err != nil {
		slog.Error("failed to persist mind map", "error", err)
		return err
	}
	return nil
}
