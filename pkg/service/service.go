package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/pkg/models"
)

const PreviewPath = "/admin/previews/"

type Notifier interface {
	Notify(ctx context.Context, message string, contact interface{}) error
}

type Store[T models.Entity[T]] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

type Previews interface {
	Put(contentType string, data []byte) string
}

type Stores struct {
	Executives Store[models.Executive]
	Students   Store[models.Student]
	Events     Store[models.Event]
	Gallery    Store[models.GalleryEvent]
	Resources  Store[models.Resource]
}

type AdminService struct {
	log      *logrus.Entry
	stores   Stores
	previews Previews
	notifier Notifier
	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

func NewAdminService(log *logrus.Logger, stores Stores, previews Previews, notifier Notifier) *AdminService {
	s := AdminService{
		log:      log.WithField("component", "service"),
		stores:   stores,
		previews: previews,
		notifier: notifier,
		validate: newValidator(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	return &s
}

// add validates the draft, gives the record a fresh id, stores it and clears
// the draft. A rejected draft is left as it was.
func add[T models.Entity[T]](ctx context.Context, s *AdminService, store Store[T], draft Draft, build func() T) (T, error) {
	var zero T
	if err := s.check(draft); err != nil {
		return zero, err
	}
	item, err := store.Insert(ctx, build().WithID(s.newID()))
	if err != nil {
		return zero, fmt.Errorf("err storing record: %w", err)
	}
	draft.Reset()
	s.log.Debugf("added record %s", item.EntityID())
	return item, nil
}

func (s *AdminService) AddExecutive(ctx context.Context, draft *ExecutiveDraft) (models.Executive, error) {
	return add(ctx, s, s.stores.Executives, draft, draft.record)
}

func (s *AdminService) AddStudent(ctx context.Context, draft *StudentDraft) (models.Student, error) {
	return add(ctx, s, s.stores.Students, draft, draft.record)
}

func (s *AdminService) AddEvent(ctx context.Context, draft *EventDraft) (models.Event, error) {
	return add(ctx, s, s.stores.Events, draft, draft.record)
}

func (s *AdminService) AddGalleryEvent(ctx context.Context, draft *GalleryDraft) (models.GalleryEvent, error) {
	return add(ctx, s, s.stores.Gallery, draft, draft.record)
}

func (s *AdminService) AddResource(ctx context.Context, draft *ResourceDraft) (models.Resource, error) {
	return add(ctx, s, s.stores.Resources, draft, func() models.Resource { return draft.record(s.now()) })
}

func (s *AdminService) Executives(ctx context.Context) ([]models.Executive, error) {
	return s.stores.Executives.List(ctx)
}

func (s *AdminService) Students(ctx context.Context) ([]models.Student, error) {
	return s.stores.Students.List(ctx)
}

func (s *AdminService) Events(ctx context.Context) ([]models.Event, error) {
	return s.stores.Events.List(ctx)
}

func (s *AdminService) GalleryEvents(ctx context.Context) ([]models.GalleryEvent, error) {
	return s.stores.Gallery.List(ctx)
}

func (s *AdminService) Resources(ctx context.Context) ([]models.Resource, error) {
	return s.stores.Resources.List(ctx)
}

func (s *AdminService) DeleteExecutive(ctx context.Context, id string) (models.Executive, error) {
	return s.stores.Executives.Delete(ctx, id)
}

func (s *AdminService) DeleteStudent(ctx context.Context, id string) (models.Student, error) {
	return s.stores.Students.Delete(ctx, id)
}

func (s *AdminService) DeleteEvent(ctx context.Context, id string) (models.Event, error) {
	return s.stores.Events.Delete(ctx, id)
}

func (s *AdminService) DeleteGalleryEvent(ctx context.Context, id string) (models.GalleryEvent, error) {
	return s.stores.Gallery.Delete(ctx, id)
}

func (s *AdminService) DeleteResource(ctx context.Context, id string) (models.Resource, error) {
	return s.stores.Resources.Delete(ctx, id)
}

// imageTypes are the sniffed content types accepted for uploads. Anything
// that could carry script, like SVG, is left out.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// AttachImage keeps an uploaded image for preview and points the draft field
// at it. The type is sniffed from the bytes; the image is never uploaded
// anywhere.
func (s *AdminService) AttachImage(draft Draft, field string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Fields: []FieldError{{Field: field, Error: "file is empty"}}}
	}
	contentType := http.DetectContentType(data)
	if !imageTypes[contentType] {
		return "", &ValidationError{Fields: []FieldError{{Field: field, Error: "must be an image"}}}
	}
	ref := PreviewPath + s.previews.Put(contentType, data)
	draft.Set(field, ref)
	return ref, nil
}
