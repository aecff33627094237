package models

type GalleryEvent struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	CoverImage string   `json:"coverImage"`
	Images     []string `json:"images"`
}

func (g GalleryEvent) EntityID() string { return g.ID }

func (g GalleryEvent) WithID(id string) GalleryEvent {
	g.ID = id
	return g
}
