package rest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/pershin-daniil/bsa-site/pkg/fetcher"
	"github.com/pershin-daniil/bsa-site/pkg/logger"
	"github.com/pershin-daniil/bsa-site/pkg/memstore"
	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/service"
)

const adminPassword = "secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type ServerTestSuite struct {
	suite.Suite
	log      *logrus.Logger
	api      *httptest.Server
	failing  atomic.Bool
	notifier *recordingNotifier
	app      *service.AdminService
	handler  *Server
	srv      *httptest.Server
	client   *http.Client
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupSuite() {
	s.log = logger.NewLogger()
	s.api = httptest.NewServer(http.HandlerFunc(s.serveAPI))
	s.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func (s *ServerTestSuite) TearDownSuite() {
	s.api.Close()
}

func (s *ServerTestSuite) SetupTest() {
	s.failing.Store(false)
	s.notifier = &recordingNotifier{}
	previews := memstore.NewPreviews(time.Minute)
	stores := service.Stores{
		Executives: memstore.NewCollection[models.Executive](),
		Students:   memstore.NewCollection[models.Student](),
		Events:     memstore.NewCollection[models.Event](),
		Gallery:    memstore.NewCollection[models.GalleryEvent](),
		Resources:  memstore.NewCollection[models.Resource](),
	}
	s.app = service.NewAdminService(s.log, stores, previews, s.notifier)
	api := fetcher.New(s.log, s.api.URL, time.Second)
	var err error
	s.handler, err = NewServer(s.log, s.app, api, previews, PresenceVerifier{}, Options{
		Address:  ":0",
		Version:  "test",
		Location: time.UTC,
	})
	s.Require().NoError(err)
	s.handler.now = func() time.Time { return time.Date(2030, 1, 1, 8, 58, 59, 0, time.UTC) }
	s.handler.tick = 10 * time.Millisecond
	s.srv = httptest.NewServer(s.handler.Handler())
}

func (s *ServerTestSuite) TearDownTest() {
	s.srv.Close()
}

func envelope(key string, items interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{key: items},
	}
}

func (s *ServerTestSuite) serveAPI(w http.ResponseWriter, r *http.Request) {
	if s.failing.Load() {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}
	var body interface{}
	switch r.URL.Path {
	case "/api/events":
		body = envelope("events", []models.Event{
			{ID: "e1", Title: "Pohela Boishakh", Date: "2030-01-02", Time: "10:00", PosterURL: "boishakh.jpg"},
			{ID: "e2", Title: "Victory Day", Date: "2020-12-16", Time: "18:00"},
			{ID: `e"3`, Title: "Quiz Night", Date: "2030-01-02", Time: "10:00"},
		})
	case "/api/students":
		students := make([]models.Student, 0, 23)
		for i := 1; i <= 23; i++ {
			students = append(students, models.Student{
				ID:      fmt.Sprintf("s%02d", i),
				Name:    fmt.Sprintf("Student %02d", i),
				Program: "Computer Science",
				Year:    "2nd",
			})
		}
		body = envelope("students", students)
	case "/api/resources":
		body = envelope("resources", []models.Resource{
			{ID: "r1", Category: models.CategoryHealthcare, Name: "Sanford Clinic", Description: "Walk-in clinic", Location: "Vermillion"},
			{ID: "r2", Category: models.CategoryHousing, Name: "Coyote Village", Description: "Student housing", Location: "Campus"},
			{ID: "r3", Category: models.CategoryJobs, Name: "Career Center", Description: "Jobs and clinic referrals", Location: "Campus"},
		})
	case "/api/executives":
		body = envelope("executives", []models.Executive{})
	case "/api/gallery":
		body = envelope("events", []models.GalleryEvent{
			{ID: "g1", Title: "Eid Night", Date: "2024-04-10", CoverImage: "cover.jpg", Images: []string{"one.jpg", "two.jpg", "three.jpg"}},
		})
	case "/api/auth/login":
		var creds models.LoginCredentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != adminPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		body = map[string]interface{}{
			"token": "tok-1",
			"data":  map[string]interface{}{"admin": map[string]string{"id": "a1", "email": creds.Email}},
		}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ServerTestSuite) request(method, path string, body io.Reader, contentType string, admin bool) (*http.Response, string) {
	req, err := http.NewRequest(method, s.srv.URL+path, body)
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "any-token"})
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(resp.Body.Close())
	}()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, string(data)
}

func (s *ServerTestSuite) get(path string, admin bool) (*http.Response, string) {
	return s.request(http.MethodGet, path, nil, "", admin)
}

func (s *ServerTestSuite) postForm(path string, values url.Values, admin bool) (*http.Response, string) {
	return s.request(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", admin)
}

func (s *ServerTestSuite) postMultipart(path string, fields []formField, files []formFile) (*http.Response, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		s.Require().NoError(mw.WriteField(f.name, f.value))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", "application/octet-stream")
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		s.Require().NoError(err)
		_, err = part.Write(f.data)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())
	return s.request(http.MethodPost, path, &buf, mw.FormDataContentType(), true)
}

func (s *ServerTestSuite) TestVersionAndHealth() {
	resp, body := s.get("/version", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("test\n", body)

	resp, body = s.get("/health", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().JSONEq(`{"status":"ok","version":"test"}`, body)
}

func (s *ServerTestSuite) TestHealthPingsDatabase() {
	s.handler.db = stubPinger{}
	resp, body := s.get("/health", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().JSONEq(`{"status":"ok","version":"test"}`, body)

	s.handler.db = stubPinger{err: fmt.Errorf("connection refused")}
	resp, body = s.get("/health", false)
	s.Require().Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Require().JSONEq(`{"status":"unavailable","version":"test"}`, body)
}

func (s *ServerTestSuite) TestGuardRedirectsWithoutToken() {
	for _, path := range []string{"/admin/dashboard", "/admin/students", "/admin/resources", "/admin/previews/x"} {
		resp, body := s.get(path, false)
		s.Require().Equal(http.StatusFound, resp.StatusCode, path)
		s.Require().Equal(loginPath, resp.Header.Get("Location"), path)
		s.Require().NotContains(body, "Manage", path)
	}
}

func (s *ServerTestSuite) TestGuardAcceptsAnyToken() {
	resp, body := s.get("/admin/dashboard", true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "Admin Dashboard")
	s.Require().Contains(body, "Manage Resources")
}

func (s *ServerTestSuite) TestAdminRootGoesToDashboard() {
	resp, _ := s.get("/admin", false)
	s.Require().Equal(http.StatusFound, resp.StatusCode)
	s.Require().Equal(dashboardPath, resp.Header.Get("Location"))
}

func (s *ServerTestSuite) TestLoginStoresToken() {
	resp, _ := s.postForm("/admin/login", url.Values{"email": {"admin@bsa.org"}, "password": {adminPassword}}, false)
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Require().Equal(dashboardPath, resp.Header.Get("Location"))

	var token *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == tokenCookie {
			token = c
		}
	}
	s.Require().NotNil(token)
	s.Require().Equal("tok-1", token.Value)
	s.Require().True(token.HttpOnly)
}

func (s *ServerTestSuite) TestLoginRejectsBadPassword() {
	resp, body := s.postForm("/admin/login", url.Values{"email": {"admin@bsa.org"}, "password": {"nope"}}, false)
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Require().Contains(body, "Invalid email or password.")
	s.Require().Empty(resp.Cookies())
}

func (s *ServerTestSuite) TestLoginRequiresBothFields() {
	resp, body := s.postForm("/admin/login", url.Values{"email": {"admin@bsa.org"}}, false)
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Require().Contains(body, "Email and password are required.")
}

func (s *ServerTestSuite) TestLogoutExpiresToken() {
	resp, _ := s.postForm("/admin/logout", url.Values{}, true)
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Require().Equal(loginPath, resp.Header.Get("Location"))
	cookies := resp.Cookies()
	s.Require().Len(cookies, 1)
	s.Require().Equal(tokenCookie, cookies[0].Name)
	s.Require().Equal("", cookies[0].Value)
	s.Require().Less(cookies[0].MaxAge, 0)
}

func (s *ServerTestSuite) TestStudentsPagination() {
	resp, body := s.get("/current-students?page=3", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "Page 3 of 3")
	s.Require().Contains(body, "Student 21")
	s.Require().Contains(body, "Student 23")
	s.Require().NotContains(body, "Student 20")
	s.Require().Contains(body, "/current-students?page=2")

	_, body = s.get("/current-students?page=99", false)
	s.Require().Contains(body, "Page 3 of 3")

	_, body = s.get("/current-students?page=junk", false)
	s.Require().Contains(body, "Page 1 of 3")
	s.Require().Contains(body, "Student 10")
	s.Require().NotContains(body, "Student 11")
}

func (s *ServerTestSuite) TestResourcesFilter() {
	_, body := s.get("/resources?q=CLINIC", false)
	s.Require().Contains(body, "Sanford Clinic")
	s.Require().Contains(body, "Career Center")
	s.Require().NotContains(body, "Coyote Village")

	_, body = s.get("/resources?q=clinic&category=Healthcare", false)
	s.Require().Contains(body, "Sanford Clinic")
	s.Require().NotContains(body, "Career Center")

	_, body = s.get("/resources?q=library", false)
	s.Require().Contains(body, "No resources match your search.")
}

func (s *ServerTestSuite) TestEmptyCollection() {
	resp, body := s.get("/team", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "No team members to show yet.")
	s.Require().NotContains(body, "Try again")
}

func (s *ServerTestSuite) TestFetchFailureOffersRetry() {
	s.failing.Store(true)
	resp, body := s.get("/current-students?page=2", false)
	s.Require().Equal(http.StatusBadGateway, resp.StatusCode)
	s.Require().Contains(body, "Try again")
	s.Require().Contains(body, `href="/current-students?page=2"`)
	s.Require().NotContains(body, "No students to show yet.")
}

func (s *ServerTestSuite) TestHomeShowsCountdown() {
	resp, body := s.get("/", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "Pohela Boishakh")
	s.Require().Contains(body, "1d 1h 1m 1s")
	s.Require().Contains(body, "Event has ended")
	s.Require().Contains(body, s.api.URL+"/uploads/events/boishakh.jpg")
	s.Require().Contains(body, "/static/placeholder.svg")
}

func (s *ServerTestSuite) TestHomeCountdownSelectorIsEscaped() {
	_, body := s.get("/", false)
	s.Require().Contains(body, `data-countdown="e&#34;3"`)
	s.Require().Contains(body, "CSS.escape(id)")
	s.Require().NotContains(body, `'[data-countdown="' + id + '"]'`)
}

func (s *ServerTestSuite) TestHeroWrapsAround() {
	_, body := s.get("/hero?slide=2", false)
	s.Require().Contains(body, "url=/hero?slide=0")
	s.Require().Contains(body, `href="/hero?slide=1"`)

	_, body = s.get("/hero?slide=-1", false)
	s.Require().Contains(body, "url=/hero?slide=0")
}

func (s *ServerTestSuite) TestAlbumLightbox() {
	resp, body := s.get("/gallery/g1?image=-1", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "lightbox")
	s.Require().Contains(body, "photo 3")
	s.Require().Contains(body, "/gallery/g1?image=0")
	s.Require().Contains(body, "/gallery/g1?image=1")

	resp, _ = s.get("/gallery/missing", false)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) TestCountdownStream() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.srv.URL+"/events/countdown", nil)
	s.Require().NoError(err)
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal("text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var frames []map[string]string
	for len(frames) < 2 {
		line, err := reader.ReadString('\n')
		s.Require().NoError(err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var board map[string]string
		s.Require().NoError(json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &board))
		frames = append(frames, board)
	}
	cancel()
	for _, board := range frames {
		s.Require().Equal("1d 1h 1m 1s", board["e1"])
		s.Require().Equal("Event has ended", board["e2"])
		s.Require().Equal("1d 1h 1m 1s", board[`e"3`])
	}
}

func (s *ServerTestSuite) TestContact() {
	resp, body := s.postForm("/contact", url.Values{"name": {"Nadia"}, "email": {"nadia@example.com"}, "message": {"Hello!"}}, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "Your message has been sent.")
	s.Require().Len(s.notifier.Messages(), 1)
	s.Require().Contains(s.notifier.Messages()[0], "Nadia")

	resp, body = s.postForm("/contact", url.Values{"name": {"Nadia"}, "email": {"nope"}, "message": {"Hello!"}}, false)
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Require().Contains(body, "must be a valid email address")
	s.Require().Contains(body, `value="Nadia"`)
	s.Require().Len(s.notifier.Messages(), 1)
}

func (s *ServerTestSuite) TestAddAndDeleteExecutive() {
	resp, _ := s.postMultipart("/admin/executives/new", []formField{
		{"name", "Tanvir Ahmed"},
		{"position", "President"},
		{"action", "submit"},
	}, []formFile{{field: "imageUrlFile", name: "tanvir.png", data: pngBytes}})
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Require().Equal(executivesPath, resp.Header.Get("Location"))

	items, err := s.app.Executives(context.Background())
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().True(strings.HasPrefix(items[0].ImageURL, service.PreviewPath))

	_, body := s.get(executivesPath, true)
	s.Require().Contains(body, "Tanvir Ahmed")

	resp, _ = s.postForm(executivesPath+"/"+items[0].ID+"/delete", url.Values{}, true)
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	items, err = s.app.Executives(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(items)

	resp, _ = s.postForm(executivesPath+"/missing/delete", url.Values{}, true)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) TestAddStudentValidation() {
	resp, body := s.postMultipart("/admin/students/new", []formField{
		{"name", "Farhan"},
		{"year", "5th"},
	}, nil)
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Require().Contains(body, "this field is required")
	s.Require().Contains(body, "must be one of 1st, 2nd, 3rd, 4th")
	s.Require().Contains(body, `value="Farhan"`)

	items, err := s.app.Students(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(items)
}

func (s *ServerTestSuite) TestPreviewKeepsDraft() {
	resp, body := s.postMultipart("/admin/upcoming-events/new", []formField{
		{"title", "Language Day"},
		{"action", "preview"},
	}, []formFile{{field: "posterUrlFile", name: "poster.png", data: pngBytes}})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, `value="Language Day"`)

	start := strings.Index(body, service.PreviewPath)
	s.Require().GreaterOrEqual(start, 0)
	ref := body[start : start+len(service.PreviewPath)+36]

	resp, data := s.get(ref, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("image/png", resp.Header.Get("Content-Type"))
	s.Require().Equal("nosniff", resp.Header.Get("X-Content-Type-Options"))
	s.Require().Contains(resp.Header.Get("Content-Security-Policy"), "default-src 'none'")
	s.Require().Equal(string(pngBytes), data)

	items, err := s.app.Events(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(items)
}

func (s *ServerTestSuite) TestUploadMustBeImage() {
	resp, body := s.postMultipart("/admin/executives/new", []formField{{"name", "X"}},
		[]formFile{{field: "imageUrlFile", name: "notes.txt", data: []byte("plain text")}})
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Require().Contains(body, "must be an image")
}

func (s *ServerTestSuite) TestUploadedSVGIsRejected() {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.cookie)</script></svg>`)
	resp, body := s.postMultipart("/admin/executives/new", []formField{{"name", "X"}, {"action", "preview"}},
		[]formFile{{field: "imageUrlFile", name: "logo.png", contentType: "image/svg+xml", data: svg}})
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Require().Contains(body, "must be an image")
	s.Require().NotContains(body, service.PreviewPath)
}

func (s *ServerTestSuite) TestGalleryRemoveImage() {
	resp, body := s.postMultipart("/admin/gallery/new", []formField{
		{"title", "Eid Night"},
		{"images", "a.jpg"},
		{"images", "b.jpg"},
		{"images", "c.jpg"},
		{"remove", "1"},
	}, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, `value="a.jpg"`)
	s.Require().NotContains(body, `value="b.jpg"`)
	s.Require().Contains(body, `value="c.jpg"`)

	items, err := s.app.GalleryEvents(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(items)
}

func (s *ServerTestSuite) TestResourceDeleteNeedsConfirmation() {
	resp, _ := s.postMultipart("/admin/resources/new", []formField{
		{"category", "Housing"},
		{"name", "Coyote Village"},
		{"description", "Student housing"},
		{"location", "Campus"},
	}, nil)
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	items, err := s.app.Resources(context.Background())
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	id := items[0].ID

	resp, body := s.postForm(resourcesPath+"/"+id+"/delete", url.Values{}, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Contains(body, "Are you sure you want to delete")
	items, err = s.app.Resources(context.Background())
	s.Require().NoError(err)
	s.Require().Len(items, 1)

	resp, _ = s.postForm(resourcesPath+"/"+id+"/delete", url.Values{"confirm": {"yes"}}, true)
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	items, err = s.app.Resources(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(items)
}

func (s *ServerTestSuite) TestManageStudentsSearchAndPages() {
	ctx := context.Background()
	for i := 1; i <= 17; i++ {
		draft := &service.StudentDraft{
			Name:     fmt.Sprintf("Member %02d", i),
			Program:  "Physics",
			Year:     "1st",
			PhotoURL: "p.jpg",
		}
		if i%2 == 0 {
			draft.Program = "Economics"
		}
		_, err := s.app.AddStudent(ctx, draft)
		s.Require().NoError(err)
	}

	_, body := s.get(studentsPath+"?page=2", true)
	s.Require().Contains(body, "Page 2 of 2")
	s.Require().Contains(body, "Member 16")
	s.Require().NotContains(body, "Member 15")

	_, body = s.get(studentsPath+"?q=economics", true)
	s.Require().Contains(body, "Member 02")
	s.Require().NotContains(body, "Member 01")
	s.Require().Contains(body, "Page 1 of 1")
}
