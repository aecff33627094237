package models

var StudentYears = []string{"1st", "2nd", "3rd", "4th"}

type Student struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Program  string  `json:"program"`
	Year     string  `json:"year"`
	PhotoURL string  `json:"photoUrl"`
	Socials  Socials `json:"socials"`
}

func (s Student) EntityID() string { return s.ID }

func (s Student) WithID(id string) Student {
	s.ID = id
	return s
}
