package rest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/service"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type view map[string]interface{}

func (s *Server) funcs() template.FuncMap {
	return template.FuncMap{
		"asset": func(collection, filename string) string {
			return s.api.AssetURL(models.Collection{Path: collection}, filename)
		},
		"pageURL": func(base string, query url.Values, page int) string {
			q := url.Values{}
			for k, v := range query {
				q[k] = append([]string(nil), v...)
			}
			q.Set("page", strconv.Itoa(page))
			return base + "?" + q.Encode()
		},
		"fieldError": func(verr *service.ValidationError, field string) string {
			if verr == nil {
				return ""
			}
			return verr.Field(field)
		},
		"inc": func(i int) int { return i + 1 },
	}
}

// parseViews builds one template set per page, each on top of the layout.
func (s *Server) parseViews() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	views := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		tmpl, err := template.New("base.html").Funcs(s.funcs()).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", page)
		if err != nil {
			return nil, fmt.Errorf("err parsing %s: %w", page, err)
		}
		views[name] = tmpl
	}
	return views, nil
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data view) {
	tmpl, ok := s.views[name]
	if !ok {
		s.log.Errorf("template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.log.Errorf("err rendering %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warnf("err during writing to connection: %v", err)
	}
}

// renderFailure shows the static error state with a link back to the same URL.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, status int, title string) {
	s.render(w, status, "error", view{
		"Title":   title,
		"Message": "Something went wrong while loading this page.",
		"Retry":   r.URL.RequestURI(),
	})
}
