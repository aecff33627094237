package models

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryHousing     Category = "Housing"
	CategoryJobs        Category = "Jobs"
	CategoryHealthcare  Category = "Healthcare"
	CategoryEducation   Category = "Education"
	CategoryImmigration Category = "Immigration"
	CategoryLegal       Category = "Legal"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryHousing,
	CategoryJobs,
	CategoryHealthcare,
	CategoryEducation,
	CategoryImmigration,
	CategoryLegal,
	CategoryOther,
}

// ParseCategory accepts the empty string as "all categories".
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Contacts struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type Resource struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Contacts    Contacts  `json:"contacts"`
	Socials     Socials   `json:"socials,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r Resource) EntityID() string { return r.ID }

func (r Resource) WithID(id string) Resource {
	r.ID = id
	return r
}
