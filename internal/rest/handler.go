package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pershin-daniil/bsa-site/pkg/carousel"
	"github.com/pershin-daniil/bsa-site/pkg/countdown"
	"github.com/pershin-daniil/bsa-site/pkg/fetcher"
	"github.com/pershin-daniil/bsa-site/pkg/listview"
	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/service"
)

const studentsPageSize = 10

type App interface {
	AddExecutive(ctx context.Context, draft *service.ExecutiveDraft) (models.Executive, error)
	AddStudent(ctx context.Context, draft *service.StudentDraft) (models.Student, error)
	AddEvent(ctx context.Context, draft *service.EventDraft) (models.Event, error)
	AddGalleryEvent(ctx context.Context, draft *service.GalleryDraft) (models.GalleryEvent, error)
	AddResource(ctx context.Context, draft *service.ResourceDraft) (models.Resource, error)
	Executives(ctx context.Context) ([]models.Executive, error)
	Students(ctx context.Context) ([]models.Student, error)
	Events(ctx context.Context) ([]models.Event, error)
	GalleryEvents(ctx context.Context) ([]models.GalleryEvent, error)
	Resources(ctx context.Context) ([]models.Resource, error)
	DeleteExecutive(ctx context.Context, id string) (models.Executive, error)
	DeleteStudent(ctx context.Context, id string) (models.Student, error)
	DeleteEvent(ctx context.Context, id string) (models.Event, error)
	DeleteGalleryEvent(ctx context.Context, id string) (models.GalleryEvent, error)
	DeleteResource(ctx context.Context, id string) (models.Resource, error)
	AttachImage(draft service.Draft, field string, data []byte) (string, error)
	SendContact(ctx context.Context, msg service.ContactMessage) error
}

type heroSlide struct {
	Image string
	Title string
}

var heroSlides = []heroSlide{
	{Image: "/static/hero-campus.svg", Title: "USD CAMPUS"},
	{Image: "/static/hero-snow.svg", Title: "USD CAMPUS"},
	{Image: "/static/hero-quad.svg", Title: "USD CAMPUS"},
}

func (s *Server) versionHandler(w http.ResponseWriter, _ *http.Request) {
	_, err := fmt.Fprintf(w, "%s\n", s.version)
	if err != nil {
		s.log.Warnf("err during writing to connection: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.log.Warnf("err during pinging database: %v", err)
			s.writeResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "version": s.version})
			return
		}
	}
	s.writeResponse(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusNotFound, "error", view{
		"Title":   "Not found",
		"Message": "This page does not exist.",
	})
}

// pageStatus picks the response code for a page built from a remote collection.
func pageStatus[T any](res fetcher.Result[T]) int {
	if res.Failed() {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// loaded reports whether the page should still be rendered. A client that
// went away gets nothing.
func loaded[T any](s *Server, res fetcher.Result[T], what string) bool {
	switch {
	case res.Err == nil:
		return true
	case res.Cancelled():
		s.log.Debugf("request for %s cancelled", what)
		return false
	default:
		s.log.Warnf("err during loading %s: %v", what, res.Err)
		return true
	}
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	events := fetcher.Load[models.Event](r.Context(), s.api, models.Events)
	if !loaded(s, events, "events") {
		return
	}
	s.render(w, http.StatusOK, "home", view{
		"Title":     "Home",
		"Events":    events,
		"Countdown": countdown.Board(events.Items, s.now(), s.loc),
		"Retry":     r.URL.RequestURI(),
	})
}

// heroHandler renders one slide and refreshes itself to the next one.
func (s *Server) heroHandler(w http.ResponseWriter, r *http.Request) {
	n := len(heroSlides)
	current := carousel.Parse(r.URL.Query().Get("slide"), n)
	s.render(w, http.StatusOK, "hero", view{
		"Title":   "Welcome",
		"Slide":   heroSlides[current],
		"Current": current,
		"Slides":  heroSlides,
		"Prev":    carousel.Prev(current, n),
		"Next":    carousel.Next(current, n),
		"Refresh": int(carousel.AutoAdvance.Seconds()),
	})
}

func (s *Server) teamHandler(w http.ResponseWriter, r *http.Request) {
	team := fetcher.Load[models.Executive](r.Context(), s.api, models.Executives)
	if !loaded(s, team, "executives") {
		return
	}
	s.render(w, pageStatus(team), "team", view{
		"Title": "Our Team",
		"Team":  team,
		"Retry": r.URL.RequestURI(),
	})
}

func (s *Server) galleryHandler(w http.ResponseWriter, r *http.Request) {
	albums := fetcher.Load[models.GalleryEvent](r.Context(), s.api, models.Gallery)
	if !loaded(s, albums, "gallery") {
		return
	}
	s.render(w, pageStatus(albums), "gallery", view{
		"Title":  "Gallery",
		"Albums": albums,
		"Retry":  r.URL.RequestURI(),
	})
}

// albumHandler shows one album with a lightbox over ?image=.
func (s *Server) albumHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	albums := fetcher.Load[models.GalleryEvent](r.Context(), s.api, models.Gallery)
	if !loaded(s, albums, "gallery") {
		return
	}
	if albums.Failed() {
		s.renderFailure(w, r, http.StatusBadGateway, "Gallery")
		return
	}
	for _, album := range albums.Items {
		if album.ID != id {
			continue
		}
		data := view{"Title": album.Title, "Album": album}
		if raw := r.URL.Query().Get("image"); raw != "" && len(album.Images) > 0 {
			n := len(album.Images)
			current := carousel.Parse(raw, n)
			data["Lightbox"] = true
			data["Image"] = album.Images[current]
			data["Current"] = current
			data["Prev"] = carousel.Prev(current, n)
			data["Next"] = carousel.Next(current, n)
		}
		s.render(w, http.StatusOK, "album", data)
		return
	}
	s.notFoundHandler(w, r)
}

func (s *Server) studentsHandler(w http.ResponseWriter, r *http.Request) {
	students := fetcher.Load[models.Student](r.Context(), s.api, models.Students)
	if !loaded(s, students, "students") {
		return
	}
	query := r.URL.Query()
	s.render(w, pageStatus(students), "students", view{
		"Title":    "Current Students",
		"Students": students,
		"Page":     listview.Paginate(students.Items, studentsPageSize, listview.ParsePage(query.Get("page"))),
		"Base":     "/current-students",
		"Query":    query,
		"Retry":    r.URL.RequestURI(),
	})
}

func resourceFilter(term, category string) listview.Filter[models.Resource] {
	return listview.Filter[models.Resource]{
		Term: term,
		Fields: func(r models.Resource) []string {
			return []string{r.Name, r.Description}
		},
		Category:   category,
		CategoryOf: func(r models.Resource) string { return string(r.Category) },
	}
}

func (s *Server) resourcesHandler(w http.ResponseWriter, r *http.Request) {
	resources := fetcher.Load[models.Resource](r.Context(), s.api, models.Resources)
	if !loaded(s, resources, "resources") {
		return
	}
	query := r.URL.Query()
	category, err := models.ParseCategory(query.Get("category"))
	if err != nil {
		category = ""
	}
	filter := resourceFilter(query.Get("q"), string(category))
	s.render(w, pageStatus(resources), "resources", view{
		"Title":      "Community Resources",
		"Resources":  resources,
		"Visible":    filter.Apply(resources.Items),
		"Filtering":  filter.Active(),
		"Term":       filter.Term,
		"Category":   filter.Category,
		"Categories": models.Categories,
		"Retry":      r.URL.RequestURI(),
	})
}

func (s *Server) contactHandler(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "contact", view{"Title": "Contact Us"})
}

func (s *Server) sendContactHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "contact", view{"Title": "Contact Us", "Failed": true})
		return
	}
	msg := service.ContactMessage{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}
	err := s.app.SendContact(r.Context(), msg)
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.render(w, http.StatusUnprocessableEntity, "contact", view{"Title": "Contact Us", "Form": msg, "Errors": verr})
	case err != nil:
		s.log.Warnf("err during sending contact message: %v", err)
		s.render(w, http.StatusBadGateway, "contact", view{"Title": "Contact Us", "Form": msg, "Failed": true})
	default:
		s.render(w, http.StatusOK, "contact", view{"Title": "Contact Us", "Sent": true})
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if x, ok := data.(error); ok {
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: x.Error()}); err != nil {
			s.log.Warnf("err during encoding error: %v", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warnf("err during encoding responce: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
