package models

// Collection describes one read endpoint of the association API.
type Collection struct {
	// Path is appended to /api/ and /uploads/.
	Path string
	// Key is the field under "data" holding the records.
	Key string
}

var (
	Events     = Collection{Path: "events", Key: "events"}
	Students   = Collection{Path: "students", Key: "students"}
	Gallery    = Collection{Path: "gallery", Key: "events"}
	Resources  = Collection{Path: "resources", Key: "resources"}
	Executives = Collection{Path: "executives", Key: "executives"}
)
