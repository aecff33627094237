package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pershin-daniil/bsa-site/pkg/listview"
	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/service"
)

const (
	maxUploadSize          = 32 << 20
	fileFieldSuffix        = "File"
	manageStudentsPerPage  = 15
	manageResourcesPerPage = 9
)

const (
	executivesPath = "/admin/executives"
	studentsPath   = "/admin/students"
	eventsPath     = "/admin/upcoming-events"
	galleryPath    = "/admin/gallery"
	resourcesPath  = "/admin/resources"
)

// adminForm is the add form of a management page. Draft holds whatever the
// admin has entered so far.
type adminForm struct {
	Draft  service.Draft
	Errors *service.ValidationError
	Open   bool
	Failed bool
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	data := view{"Title": "Admin Dashboard"}
	if claims := s.getClaims(r.Context()); claims != nil && claims.Email != "" {
		data["Email"] = claims.Email
	}
	s.render(w, http.StatusOK, "dashboard", data)
}

func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	preview, ok := s.previews.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", preview.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
	w.Header().Set("Cache-Control", "private, no-store")
	if _, err := w.Write(preview.Data); err != nil {
		s.log.Warnf("err during writing preview: %v", err)
	}
}

// bindDraft copies the posted fields into the draft and attaches every
// uploaded file. A file posted as "<field>File" lands in <field>.
func (s *Server) bindDraft(r *http.Request, draft service.Draft) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fmt.Errorf("err parsing form: %w", err)
	}
	for field, values := range r.PostForm {
		for _, value := range values {
			draft.Set(field, value)
		}
	}
	if r.MultipartForm == nil {
		return nil
	}
	for key, files := range r.MultipartForm.File {
		field := strings.TrimSuffix(key, fileFieldSuffix)
		if field == key {
			continue
		}
		for _, fh := range files {
			data, err := readUpload(fh)
			if err != nil {
				return err
			}
			if _, err = s.app.AttachImage(draft, field, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("err opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("err reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// submitDraft runs one post of an add form. "preview" and "remove" only
// redisplay the draft; anything else submits it.
func (s *Server) submitDraft(w http.ResponseWriter, r *http.Request, back string, draft service.Draft,
	add func(ctx context.Context) error, show func(form adminForm, status int)) {
	form := adminForm{Draft: draft, Open: true}
	err := s.bindDraft(r, draft)
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = verr
		show(form, http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.log.Warnf("err during reading form: %v", err)
		form.Failed = true
		show(form, http.StatusBadRequest)
		return
	}

	if raw, ok := r.PostForm["remove"]; ok && len(raw) > 0 {
		if gallery, ok := draft.(*service.GalleryDraft); ok {
			if i, err := strconv.Atoi(raw[0]); err == nil {
				gallery.RemoveImage(i)
			}
		}
		show(form, http.StatusOK)
		return
	}
	if r.PostForm.Get("action") == "preview" {
		show(form, http.StatusOK)
		return
	}

	err = add(r.Context())
	switch {
	case errors.As(err, &verr):
		form.Errors = verr
		show(form, http.StatusUnprocessableEntity)
	case err != nil:
		s.log.Warnf("err during saving record: %v", err)
		form.Failed = true
		show(form, http.StatusInternalServerError)
	default:
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, back string, del func(ctx context.Context, id string) error) {
	err := del(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.render(w, http.StatusNotFound, "error", view{
			"Title":   "Not found",
			"Message": "This record no longer exists.",
			"Back":    back,
		})
		return
	case err != nil:
		s.log.Warnf("err during deleting record: %v", err)
		s.renderFailure(w, r, http.StatusInternalServerError, "Delete failed")
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) adminList(w http.ResponseWriter, r *http.Request, err error, what string) bool {
	if err == nil {
		return true
	}
	s.log.Warnf("err during listing %s: %v", what, err)
	s.render(w, http.StatusInternalServerError, "error", view{
		"Title":   "Admin",
		"Message": "Could not load " + what + ".",
		"Retry":   r.URL.RequestURI(),
	})
	return false
}

func (s *Server) adminExecutivesHandler(w http.ResponseWriter, r *http.Request) {
	s.showExecutives(w, r, adminForm{Draft: &service.ExecutiveDraft{}, Open: r.URL.Query().Has("add")}, http.StatusOK)
}

func (s *Server) showExecutives(w http.ResponseWriter, r *http.Request, form adminForm, status int) {
	items, err := s.app.Executives(r.Context())
	if !s.adminList(w, r, err, "executives") {
		return
	}
	s.render(w, status, "admin_executives", view{
		"Title": "Manage Executives",
		"Items": items,
		"Form":  form,
	})
}

func (s *Server) newExecutiveHandler(w http.ResponseWriter, r *http.Request) {
	draft := &service.ExecutiveDraft{}
	s.submitDraft(w, r, executivesPath, draft, func(ctx context.Context) error {
		_, err := s.app.AddExecutive(ctx, draft)
		return err
	}, func(form adminForm, status int) { s.showExecutives(w, r, form, status) })
}

func (s *Server) deleteExecutiveHandler(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, executivesPath, func(ctx context.Context, id string) error {
		_, err := s.app.DeleteExecutive(ctx, id)
		return err
	})
}

func studentFilter(term string) listview.Filter[models.Student] {
	return listview.Filter[models.Student]{
		Term: term,
		Fields: func(st models.Student) []string {
			return []string{st.Name, st.Program}
		},
	}
}

func (s *Server) adminStudentsHandler(w http.ResponseWriter, r *http.Request) {
	s.showStudents(w, r, adminForm{Draft: &service.StudentDraft{}, Open: r.URL.Query().Has("add")}, http.StatusOK)
}

func (s *Server) showStudents(w http.ResponseWriter, r *http.Request, form adminForm, status int) {
	items, err := s.app.Students(r.Context())
	if !s.adminList(w, r, err, "students") {
		return
	}
	query := r.URL.Query()
	filter := studentFilter(query.Get("q"))
	visible := filter.Apply(items)
	s.render(w, status, "admin_students", view{
		"Title": "Manage Students",
		"Total": len(items),
		"Page":  listview.Paginate(visible, manageStudentsPerPage, listview.ParsePage(query.Get("page"))),
		"Term":  filter.Term,
		"Base":  studentsPath,
		"Query": query,
		"Years": models.StudentYears,
		"Form":  form,
	})
}

func (s *Server) newStudentHandler(w http.ResponseWriter, r *http.Request) {
	draft := &service.StudentDraft{}
	s.submitDraft(w, r, studentsPath, draft, func(ctx context.Context) error {
		_, err := s.app.AddStudent(ctx, draft)
		return err
	}, func(form adminForm, status int) { s.showStudents(w, r, form, status) })
}

func (s *Server) deleteStudentHandler(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, studentsPath, func(ctx context.Context, id string) error {
		_, err := s.app.DeleteStudent(ctx, id)
		return err
	})
}

func (s *Server) adminEventsHandler(w http.ResponseWriter, r *http.Request) {
	s.showEvents(w, r, adminForm{Draft: &service.EventDraft{}, Open: r.URL.Query().Has("add")}, http.StatusOK)
}

func (s *Server) showEvents(w http.ResponseWriter, r *http.Request, form adminForm, status int) {
	items, err := s.app.Events(r.Context())
	if !s.adminList(w, r, err, "events") {
		return
	}
	s.render(w, status, "admin_events", view{
		"Title": "Manage Upcoming Events",
		"Items": items,
		"Form":  form,
	})
}

func (s *Server) newEventHandler(w http.ResponseWriter, r *http.Request) {
	draft := &service.EventDraft{}
	s.submitDraft(w, r, eventsPath, draft, func(ctx context.Context) error {
		_, err := s.app.AddEvent(ctx, draft)
		return err
	}, func(form adminForm, status int) { s.showEvents(w, r, form, status) })
}

func (s *Server) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, eventsPath, func(ctx context.Context, id string) error {
		_, err := s.app.DeleteEvent(ctx, id)
		return err
	})
}

func (s *Server) adminGalleryHandler(w http.ResponseWriter, r *http.Request) {
	s.showGallery(w, r, adminForm{Draft: &service.GalleryDraft{}, Open: r.URL.Query().Has("add")}, http.StatusOK)
}

func (s *Server) showGallery(w http.ResponseWriter, r *http.Request, form adminForm, status int) {
	items, err := s.app.GalleryEvents(r.Context())
	if !s.adminList(w, r, err, "gallery") {
		return
	}
	s.render(w, status, "admin_gallery", view{
		"Title": "Manage Gallery",
		"Items": items,
		"Form":  form,
	})
}

func (s *Server) newGalleryEventHandler(w http.ResponseWriter, r *http.Request) {
	draft := &service.GalleryDraft{}
	s.submitDraft(w, r, galleryPath, draft, func(ctx context.Context) error {
		_, err := s.app.AddGalleryEvent(ctx, draft)
		return err
	}, func(form adminForm, status int) { s.showGallery(w, r, form, status) })
}

func (s *Server) deleteGalleryEventHandler(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, galleryPath, func(ctx context.Context, id string) error {
		_, err := s.app.DeleteGalleryEvent(ctx, id)
		return err
	})
}

func (s *Server) adminResourcesHandler(w http.ResponseWriter, r *http.Request) {
	s.showResources(w, r, adminForm{Draft: service.NewResourceDraft(), Open: r.URL.Query().Has("add")}, http.StatusOK)
}

func (s *Server) showResources(w http.ResponseWriter, r *http.Request, form adminForm, status int) {
	items, err := s.app.Resources(r.Context())
	if !s.adminList(w, r, err, "resources") {
		return
	}
	query := r.URL.Query()
	category, err := models.ParseCategory(query.Get("category"))
	if err != nil {
		category = ""
	}
	filter := resourceFilter(query.Get("q"), string(category))
	visible := filter.Apply(items)
	s.render(w, status, "admin_resources", view{
		"Title":      "Manage Resources",
		"Total":      len(items),
		"Page":       listview.Paginate(visible, manageResourcesPerPage, listview.ParsePage(query.Get("page"))),
		"Term":       filter.Term,
		"Category":   filter.Category,
		"Categories": models.Categories,
		"Base":       resourcesPath,
		"Query":      query,
		"Form":       form,
	})
}

func (s *Server) newResourceHandler(w http.ResponseWriter, r *http.Request) {
	draft := service.NewResourceDraft()
	s.submitDraft(w, r, resourcesPath, draft, func(ctx context.Context) error {
		_, err := s.app.AddResource(ctx, draft)
		return err
	}, func(form adminForm, status int) { s.showResources(w, r, form, status) })
}

// deleteResourceHandler asks for confirmation unless confirm=yes was posted.
func (s *Server) deleteResourceHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		id := chi.URLParam(r, "id")
		items, err := s.app.Resources(r.Context())
		if !s.adminList(w, r, err, "resources") {
			return
		}
		for _, item := range items {
			if item.ID == id {
				s.render(w, http.StatusOK, "confirm_delete", view{
					"Title":    "Delete resource",
					"Resource": item,
					"Action":   resourcesPath + "/" + id + "/delete",
					"Back":     resourcesPath,
				})
				return
			}
		}
		s.render(w, http.StatusNotFound, "error", view{
			"Title":   "Not found",
			"Message": "This record no longer exists.",
			"Back":    resourcesPath,
		})
		return
	}
	s.deleteRecord(w, r, resourcesPath, func(ctx context.Context, id string) error {
		_, err := s.app.DeleteResource(ctx, id)
		return err
	})
}
