package service

import (
	"strings"
	"time"

	"github.com/pershin-daniil/bsa-site/pkg/models"
)

// Draft is the not-yet-submitted state of an admin form. Set replaces one
// field with the trimmed value; unknown fields are ignored.
type Draft interface {
	Set(field, value string)
	Reset()
}

type ExecutiveDraft struct {
	Name      string `form:"name" validate:"required"`
	Position  string `form:"position" validate:"required"`
	ImageURL  string `form:"imageUrl" validate:"required"`
	Facebook  string `form:"facebookUrl" validate:"omitempty,url"`
	Instagram string `form:"instagramUrl" validate:"omitempty,url"`
	LinkedIn  string `form:"linkedinUrl" validate:"omitempty,url"`
}

func (d *ExecutiveDraft) Set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		d.Name = value
	case "position":
		d.Position = value
	case "imageUrl":
		d.ImageURL = value
	case "facebookUrl":
		d.Facebook = value
	case "instagramUrl":
		d.Instagram = value
	case "linkedinUrl":
		d.LinkedIn = value
	}
}

func (d *ExecutiveDraft) Reset() { *d = ExecutiveDraft{} }

func (d ExecutiveDraft) record() models.Executive {
	return models.Executive{
		Name:     d.Name,
		Position: d.Position,
		ImageURL: d.ImageURL,
		Socials:  models.Socials{Facebook: d.Facebook, Instagram: d.Instagram, LinkedIn: d.LinkedIn},
	}
}

type StudentDraft struct {
	Name      string `form:"name" validate:"required"`
	Program   string `form:"program" validate:"required"`
	Year      string `form:"year" validate:"required,oneof=1st 2nd 3rd 4th"`
	PhotoURL  string `form:"photoUrl" validate:"required"`
	Facebook  string `form:"facebookUrl" validate:"omitempty,url"`
	Instagram string `form:"instagramUrl" validate:"omitempty,url"`
	LinkedIn  string `form:"linkedinUrl" validate:"omitempty,url"`
}

func (d *StudentDraft) Set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		d.Name = value
	case "program":
		d.Program = value
	case "year":
		d.Year = value
	case "photoUrl":
		d.PhotoURL = value
	case "facebookUrl":
		d.Facebook = value
	case "instagramUrl":
		d.Instagram = value
	case "linkedinUrl":
		d.LinkedIn = value
	}
}

func (d *StudentDraft) Reset() { *d = StudentDraft{} }

func (d StudentDraft) record() models.Student {
	return models.Student{
		Name:     d.Name,
		Program:  d.Program,
		Year:     d.Year,
		PhotoURL: d.PhotoURL,
		Socials:  models.Socials{Facebook: d.Facebook, Instagram: d.Instagram, LinkedIn: d.LinkedIn},
	}
}

type EventDraft struct {
	Title       string `form:"title" validate:"required"`
	Date        string `form:"date" validate:"required,datetime=2006-01-02"`
	Time        string `form:"time" validate:"required,datetime=15:04"`
	Description string `form:"description"`
	PosterURL   string `form:"posterUrl" validate:"required"`
	TicketLink  string `form:"ticketLink" validate:"omitempty,url"`
}

func (d *EventDraft) Set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "title":
		d.Title = value
	case "date":
		d.Date = value
	case "time":
		d.Time = value
	case "description":
		d.Description = value
	case "posterUrl":
		d.PosterURL = value
	case "ticketLink":
		d.TicketLink = value
	}
}

func (d *EventDraft) Reset() { *d = EventDraft{} }

func (d EventDraft) record() models.Event {
	return models.Event{
		Title:       d.Title,
		Date:        d.Date,
		Time:        d.Time,
		Description: d.Description,
		PosterURL:   d.PosterURL,
		TicketLink:  d.TicketLink,
	}
}

type GalleryDraft struct {
	Title      string   `form:"title" validate:"required"`
	Date       string   `form:"date" validate:"required,datetime=2006-01-02"`
	CoverImage string   `form:"coverImage" validate:"required"`
	Images     []string `form:"images" validate:"min=1"`
}

// Set appends for "images": every selected photo joins the album.
func (d *GalleryDraft) Set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "title":
		d.Title = value
	case "date":
		d.Date = value
	case "coverImage":
		d.CoverImage = value
	case "images":
		if value != "" {
			d.Images = append(d.Images, value)
		}
	}
}

// RemoveImage drops the image at index i; out of range is a no-op.
func (d *GalleryDraft) RemoveImage(i int) {
	if i < 0 || i >= len(d.Images) {
		return
	}
	images := make([]string, 0, len(d.Images)-1)
	images = append(images, d.Images[:i]...)
	d.Images = append(images, d.Images[i+1:]...)
}

func (d *GalleryDraft) Reset() { *d = GalleryDraft{} }

func (d GalleryDraft) record() models.GalleryEvent {
	return models.GalleryEvent{
		Title:      d.Title,
		Date:       d.Date,
		CoverImage: d.CoverImage,
		Images:     append([]string(nil), d.Images...),
	}
}

type ResourceDraft struct {
	Category    string `form:"category" validate:"required,oneof=Housing Jobs Healthcare Education Immigration Legal Other"`
	Name        string `form:"name" validate:"required"`
	Description string `form:"description" validate:"required"`
	Location    string `form:"location" validate:"required"`
	ImageURL    string `form:"imageUrl"`
	Phone       string `form:"phone"`
	Email       string `form:"email" validate:"omitempty,email"`
	Website     string `form:"website" validate:"omitempty,url"`
	Facebook    string `form:"facebook" validate:"omitempty,url"`
	LinkedIn    string `form:"linkedin" validate:"omitempty,url"`
	Instagram   string `form:"instagram" validate:"omitempty,url"`
}

// NewResourceDraft starts in the Other category.
func NewResourceDraft() *ResourceDraft {
	return &ResourceDraft{Category: string(models.CategoryOther)}
}

func (d *ResourceDraft) Set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "category":
		d.Category = value
	case "name":
		d.Name = value
	case "description":
		d.Description = value
	case "location":
		d.Location = value
	case "imageUrl":
		d.ImageURL = value
	case "phone":
		d.Phone = value
	case "email":
		d.Email = value
	case "website":
		d.Website = value
	case "facebook":
		d.Facebook = value
	case "linkedin":
		d.LinkedIn = value
	case "instagram":
		d.Instagram = value
	}
}

func (d *ResourceDraft) Reset() { *d = *NewResourceDraft() }

func (d ResourceDraft) record(now time.Time) models.Resource {
	return models.Resource{
		Category:    models.Category(d.Category),
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		ImageURL:    d.ImageURL,
		Contacts:    models.Contacts{Phone: d.Phone, Email: d.Email, Website: d.Website},
		Socials:     models.Socials{Facebook: d.Facebook, Instagram: d.Instagram, LinkedIn: d.LinkedIn},
		CreatedAt:   now,
	}
}
