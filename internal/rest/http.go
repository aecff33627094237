package rest

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/pkg/fetcher"
	"github.com/pershin-daniil/bsa-site/pkg/memstore"
)

const (
	countdownInterval = time.Second
	shutdownTimeout   = 5 * time.Second
)

type PreviewSource interface {
	Get(id string) (memstore.Preview, bool)
}

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Address  string
	Version  string
	Location *time.Location
	// DB is checked by /health when admin records live in a database.
	DB Pinger
}

type Server struct {
	log      *logrus.Entry
	app      App
	api      *fetcher.Client
	previews PreviewSource
	verifier TokenVerifier
	db       Pinger
	views    map[string]*template.Template
	address  string
	version  string
	loc      *time.Location
	now      func() time.Time
	tick     time.Duration
}

func NewServer(log *logrus.Logger, app App, api *fetcher.Client, previews PreviewSource, verifier TokenVerifier, opts Options) (*Server, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	s := Server{
		log:      log.WithField("component", "rest"),
		app:      app,
		api:      api,
		previews: previews,
		verifier: verifier,
		db:       opts.DB,
		address:  opts.Address,
		version:  opts.Version,
		loc:      loc,
		now:      time.Now,
		tick:     countdownInterval,
	}
	views, err := s.parseViews()
	if err != nil {
		return nil, fmt.Errorf("err parsing templates: %w", err)
	}
	s.views = views
	return &s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		s.log.Panicf("err opening static files: %v", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/version", s.versionHandler)
	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.homeHandler)
	r.Get("/hero", s.heroHandler)
	r.Get("/team", s.teamHandler)
	r.Get("/gallery", s.galleryHandler)
	r.Get("/gallery/{id}", s.albumHandler)
	r.Get("/current-students", s.studentsHandler)
	r.Get("/resources", s.resourcesHandler)
	r.Get("/contact", s.contactHandler)
	r.Post("/contact", s.sendContactHandler)
	r.Get("/events/countdown", s.countdownHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.adminRootHandler)
		r.Get("/login", s.loginPageHandler)
		r.Post("/login", s.loginHandler)
		r.Post("/logout", s.logoutHandler)
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Get("/dashboard", s.dashboardHandler)
			r.Get("/previews/{id}", s.previewHandler)

			r.Get("/executives", s.adminExecutivesHandler)
			r.Post("/executives/new", s.newExecutiveHandler)
			r.Post("/executives/{id}/delete", s.deleteExecutiveHandler)

			r.Get("/students", s.adminStudentsHandler)
			r.Post("/students/new", s.newStudentHandler)
			r.Post("/students/{id}/delete", s.deleteStudentHandler)

			r.Get("/upcoming-events", s.adminEventsHandler)
			r.Post("/upcoming-events/new", s.newEventHandler)
			r.Post("/upcoming-events/{id}/delete", s.deleteEventHandler)

			r.Get("/gallery", s.adminGalleryHandler)
			r.Post("/gallery/new", s.newGalleryEventHandler)
			r.Post("/gallery/{id}/delete", s.deleteGalleryEventHandler)

			r.Get("/resources", s.adminResourcesHandler)
			r.Post("/resources/new", s.newResourceHandler)
			r.Post("/resources/{id}/delete", s.deleteResourceHandler)
		})
	})
	r.NotFound(s.notFoundHandler)
	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("err during shutdown: %v", err)
		}
	}()
	s.log.Infof("Starting server on %s", s.address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
