package models

type Executive struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	ImageURL string  `json:"imageUrl"`
	Socials  Socials `json:"socials"`
}

func (e Executive) EntityID() string { return e.ID }

func (e Executive) WithID(id string) Executive {
	e.ID = id
	return e
}
