// Package timekittest provides an in-memory Timekit API server for tests.
// It implements every endpoint of the v2 API used by the client, checks
// Basic authentication and answers with the same envelopes as the real API.
package timekittest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fixture values the server is seeded with.
const (
	Version = "v2"

	UserEmail    = "timebirdcph@gmail.com"
	UserPassword = "password"
	UserAPIToken = "ab1c2d3e4f5g6h7i"

	CalendarID   = "1e396a70-1919-11e5-a165-080027c7e7dd"
	CalendarName = "Work"
	MeetingToken = "7zdMNR48cJTjIRhz"
	PropertyKey  = "timebirdcphgmailcom-google-next-sync-token"
)

type user struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Timezone  string `json:"timezone,omitempty"`
	APIToken  string `json:"api_token,omitempty"`

	password   string
	properties map[string]string
}

type calendar struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type event struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendar_id"`
	What       string `json:"what"`
	Where      string `json:"where"`
	Start      string `json:"start"`
	End        string `json:"end"`
	AllDay     bool   `json:"all_day"`
}

type suggestion struct {
	ID        int    `json:"id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	available map[string]bool
	booked    bool
}

type meeting struct {
	Token       string        `json:"token"`
	What        string        `json:"what"`
	Where       string        `json:"where"`
	Suggestions []*suggestion `json:"suggestions"`
	invited     []string
}

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a fake Timekit API.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	users          map[string]*user // by email
	calendars      []*calendar
	events         []*event
	meetings       map[string]*meeting // by token
	nextSuggestion int
	requests       []Request
	hold           *hold
}

type hold struct {
	entered chan struct{}
	release chan struct{}
}

// NewServer starts a server seeded with one user, one calendar, a few
// events, one meeting and one property.
func NewServer() *Server {
	s := &Server{
		users:          make(map[string]*user),
		meetings:       make(map[string]*meeting),
		nextSuggestion: 1,
	}
	s.seed()

	prefix := "/" + Version
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix+"/auth", s.handleAuth)
	mux.HandleFunc("POST "+prefix+"/users", s.handleCreateUser)
	mux.HandleFunc("GET "+prefix+"/users/me", s.authenticated(s.handleGetUser))
	mux.HandleFunc("PUT "+prefix+"/users/me", s.authenticated(s.handleUpdateUser))
	mux.HandleFunc("POST "+prefix+"/findtime", s.authenticated(s.handleFindTime))
	mux.HandleFunc("GET "+prefix+"/accounts", s.authenticated(s.handleAccounts))
	mux.HandleFunc("GET "+prefix+"/accounts/google/calendars", s.authenticated(s.handleGoogleCalendars))
	mux.HandleFunc("GET "+prefix+"/accounts/sync", s.authenticated(s.handleAccountSync))
	mux.HandleFunc("GET "+prefix+"/calendars", s.authenticated(s.handleCalendars))
	mux.HandleFunc("GET "+prefix+"/calendar/{token}", s.authenticated(s.handleCalendar))
	mux.HandleFunc("GET "+prefix+"/contacts", s.authenticated(s.handleContacts))
	mux.HandleFunc("GET "+prefix+"/events", s.authenticated(s.handleEvents))
	mux.HandleFunc("GET "+prefix+"/events/availability", s.authenticated(s.handleAvailability))
	mux.HandleFunc("GET "+prefix+"/meetings", s.authenticated(s.handleMeetings))
	mux.HandleFunc("POST "+prefix+"/meetings", s.authenticated(s.handleCreateMeeting))
	mux.HandleFunc("GET "+prefix+"/meetings/{token}", s.authenticated(s.handleMeeting))
	mux.HandleFunc("PUT "+prefix+"/meetings/{token}", s.authenticated(s.handleUpdateMeeting))
	mux.HandleFunc("POST "+prefix+"/meetings/availability", s.authenticated(s.handleMeetingAvailability))
	mux.HandleFunc("POST "+prefix+"/meetings/book", s.authenticated(s.handleBookMeeting))
	mux.HandleFunc("POST "+prefix+"/meetings/{token}/invite", s.authenticated(s.handleInvite))
	mux.HandleFunc("GET "+prefix+"/properties", s.authenticated(s.handleProperties))
	mux.HandleFunc("GET "+prefix+"/properties/{key}", s.authenticated(s.handleProperty))
	mux.HandleFunc("PUT "+prefix+"/properties", s.authenticated(s.handleSetProperties))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unknown endpoint "+r.Method+" "+r.URL.Path)
	})

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// BaseURL is the value to configure as the client's API base URL.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request. It panics if there is none.
func (s *Server) LastRequest() Request {
	requests := s.Requests()
	return requests[len(requests)-1]
}

// HoldNext makes the next request block after it has been recorded and
// before it is handled. entered is closed once that request arrives;
// release lets it continue. release may be called more than once.
func (s *Server) HoldNext() (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}

	s.mu.Lock()
	s.hold = h
	s.mu.Unlock()

	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.release) }) }
}

// Invited returns the emails invited to a meeting.
func (s *Server) Invited(token string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.meetings[token]; ok {
		return append([]string(nil), m.invited...)
	}
	return nil
}

// SuggestionAvailable reports what email answered for a suggestion.
func (s *Server) SuggestionAvailable(suggestionID int, email string) (available, answered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sug := s.findSuggestion(suggestionID); sug != nil {
		available, answered = sug.available[email]
	}
	return available, answered
}

// SuggestionBooked reports whether a suggestion has been booked.
func (s *Server) SuggestionBooked(suggestionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sug := s.findSuggestion(suggestionID)
	return sug != nil && sug.booked
}

func (s *Server) seed() {
	now := time.Now().UTC().Truncate(time.Hour)

	s.users[UserEmail] = &user{
		ID:         uuid.NewString(),
		FirstName:  "Timebird",
		LastName:   "Copenhagen",
		Email:      UserEmail,
		Timezone:   "Europe/Copenhagen",
		APIToken:   UserAPIToken,
		password:   UserPassword,
		properties: map[string]string{PropertyKey: "CKCbtJPt0L8CEAE="},
	}

	s.calendars = []*calendar{
		{ID: CalendarID, Name: CalendarName, Description: "Work calendar"},
		{ID: uuid.NewString(), Name: "Personal", Description: "Personal calendar"},
	}

	s.events = []*event{
		{
			ID: uuid.NewString(), CalendarID: CalendarID, What: "Standup", Where: "Office",
			Start: now.Add(24 * time.Hour).Format(time.RFC3339),
			End:   now.Add(24*time.Hour + 15*time.Minute).Format(time.RFC3339),
		},
		{
			ID: uuid.NewString(), CalendarID: CalendarID, What: "Planning", Where: "Room 2",
			Start: now.Add(48 * time.Hour).Format(time.RFC3339),
			End:   now.Add(50 * time.Hour).Format(time.RFC3339),
		},
		{
			ID: uuid.NewString(), CalendarID: CalendarID, What: "Retro",
			Start: now.Add(-72 * time.Hour).Format(time.RFC3339),
			End:   now.Add(-71 * time.Hour).Format(time.RFC3339),
		},
	}

	s.meetings[MeetingToken] = &meeting{
		Token: MeetingToken,
		What:  "Lunch",
		Where: "Cafe",
		Suggestions: []*suggestion{
			s.newSuggestion(now.Add(24*time.Hour).Format(time.RFC3339), now.Add(25*time.Hour).Format(time.RFC3339)),
		},
	}
}

func (s *Server) newSuggestion(start, end string) *suggestion {
	sug := &suggestion{ID: s.nextSuggestion, Start: start, End: end, available: make(map[string]bool)}
	s.nextSuggestion++
	return sug
}

func (s *Server) findSuggestion(id int) *suggestion {
	for _, m := range s.meetings {
		for _, sug := range m.Suggestions {
			if sug.ID == id {
				return sug
			}
		}
	}
	return nil
}

// record stores every request before routing it.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		h := s.hold
		s.hold = nil
		s.mu.Unlock()

		if h != nil {
			close(h.entered)
			<-h.release
		}

		next.ServeHTTP(w, r)
	})
}

// authenticated resolves the user from Basic email:api_token credentials.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, token, ok := basicAuth(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		s.mu.Lock()
		u, found := s.users[email]
		s.mu.Unlock()
		if !found || u.APIToken != token {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		next(w, r, u)
	}
}

// basicAuth parses the Authorization header, accepting any casing of the scheme.
func basicAuth(r *http.Request) (string, string, bool) {
	scheme, encoded, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "basic") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	email, secret, found := strings.Cut(string(decoded), ":")
	return email, secret, found
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message":     message,
			"status_code": status,
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	email, password, ok := basicAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[email]
	if !found || u.password != password {
		writeError(w, http.StatusUnauthorized, "Wrong email or password")
		return
	}
	writeData(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Timezone  string `json:"timezone"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.Email]; exists {
		writeError(w, http.StatusUnprocessableEntity, "email has already been taken")
		return
	}
	u := &user{
		ID:         uuid.NewString(),
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Email:      body.Email,
		Timezone:   body.Timezone,
		APIToken:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		password:   body.Password,
		properties: make(map[string]string),
	}
	s.users[u.Email] = u
	writeData(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := *u
	view.APIToken = ""
	writeData(w, http.StatusOK, view)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Timezone  string `json:"timezone"`
		Password  string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.FirstName != "" {
		u.FirstName = body.FirstName
	}
	if body.LastName != "" {
		u.LastName = body.LastName
	}
	if body.Timezone != "" {
		u.Timezone = body.Timezone
	}
	if body.Password != "" {
		u.password = body.Password
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindTime(w http.ResponseWriter, r *http.Request, _ *user) {
	var body struct {
		Emails  []string `json:"emails"`
		Filters struct {
			Or  []map[string]any `json:"or"`
			And []map[string]any `json:"and"`
		} `json:"filters"`
		Future string `json:"future"`
		Length string `json:"length"`
		Sort   string `json:"sort"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Emails) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "emails must contain at least one email")
		return
	}

	start := time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
	slots := []map[string]string{
		{"start": start.Format(time.RFC3339), "end": start.Add(30 * time.Minute).Format(time.RFC3339)},
		{"start": start.Add(2 * time.Hour).Format(time.RFC3339), "end": start.Add(150 * time.Minute).Format(time.RFC3339)},
	}
	if body.Sort == "desc" {
		slots[0], slots[1] = slots[1], slots[0]
	}
	writeData(w, http.StatusOK, slots)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request, u *user) {
	writeData(w, http.StatusOK, []map[string]any{
		{"id": 1, "provider": "google", "provider_id": u.Email},
	})
}

func (s *Server) handleGoogleCalendars(w http.ResponseWriter, r *http.Request, u *user) {
	writeData(w, http.StatusOK, []map[string]any{
		{"id": u.Email, "summary": u.Email, "primary": true, "accessRole": "owner"},
		{"id": "en.danish#holiday@group.v.calendar.google.com", "summary": "Holidays", "accessRole": "reader"},
	})
}

func (s *Server) handleAccountSync(w http.ResponseWriter, r *http.Request, _ *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": len(s.events)})
}

func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request, _ *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.calendars)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request, _ *user) {
	token := r.PathValue("token")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cal := range s.calendars {
		if cal.ID == token {
			writeData(w, http.StatusOK, cal)
			return
		}
	}
	writeError(w, http.StatusNotFound, "calendar not found")
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request, _ *user) {
	writeData(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "Timebird NYC", "email": "timebirdnyc@gmail.com"},
	})
}

// parseRange reads the required start and end query parameters.
func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be an RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be an RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (s *Server) eventsBetween(start, end time.Time) []*event {
	found := []*event{}
	for _, e := range s.events {
		eventStart, _ := time.Parse(time.RFC3339, e.Start)
		eventEnd, _ := time.Parse(time.RFC3339, e.End)
		if eventStart.Before(end) && eventEnd.After(start) {
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, _ *user) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.eventsBetween(start, end))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request, _ *user) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("email") == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slots := []map[string]string{}
	for _, e := range s.eventsBetween(start, end) {
		slots = append(slots, map[string]string{"start": e.Start, "end": e.End})
	}
	writeData(w, http.StatusOK, slots)
}

func (s *Server) sortedMeetings() []*meeting {
	list := make([]*meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Token < list[j].Token })
	return list
}

func (s *Server) handleMeetings(w http.ResponseWriter, r *http.Request, _ *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.sortedMeetings())
}

func (s *Server) handleMeeting(w http.ResponseWriter, r *http.Request, _ *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[r.PathValue("token")]
	if !ok {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request, _ *user) {
	var body struct {
		What        string `json:"what"`
		Where       string `json:"where"`
		Suggestions []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"suggestions"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.What == "" {
		writeError(w, http.StatusUnprocessableEntity, "what is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := &meeting{
		Token: strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		What:  body.What,
		Where: body.Where,
	}
	for _, sug := range body.Suggestions {
		m.Suggestions = append(m.Suggestions, s.newSuggestion(sug.Start, sug.End))
	}
	s.meetings[m.Token] = m
	writeData(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request, _ *user) {
	var body struct {
		What  string `json:"what"`
		Where string `json:"where"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[r.PathValue("token")]
	if !ok {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if body.What != "" {
		m.What = body.What
	}
	if body.Where != "" {
		m.Where = body.Where
	}
	w.WriteHeader(http.StatusNoContent)
}

// suggestionID accepts the id as a JSON string or number.
type suggestionID int

func (id *suggestionID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal([]byte(strings.Trim(string(data), `"`)), &n); err != nil {
		return err
	}
	v, err := n.Int64()
	*id = suggestionID(v)
	return err
}

func (s *Server) handleMeetingAvailability(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		SuggestionID suggestionID `json:"suggestion_id"`
		Available    bool         `json:"available"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sug := s.findSuggestion(int(body.SuggestionID))
	if sug == nil {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	sug.available[u.Email] = body.Available
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBookMeeting(w http.ResponseWriter, r *http.Request, _ *user) {
	var body struct {
		SuggestionID suggestionID `json:"suggestion_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sug := s.findSuggestion(int(body.SuggestionID))
	if sug == nil {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	sug.booked = true
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, _ *user) {
	var body struct {
		Emails []string `json:"emails"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[r.PathValue("token")]
	if !ok {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	m.invited = append(m.invited, body.Emails...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(u.properties))
	for key := range u.properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		list = append(list, map[string]string{"key": key, "value": u.properties[key]})
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request, u *user) {
	key := r.PathValue("key")

	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := u.properties[key]
	if !ok {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) handleSetProperties(w http.ResponseWriter, r *http.Request, u *user) {
	var body map[string]string
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range body {
		u.properties[key] = value
	}
	w.WriteHeader(http.StatusNoContent)
}
