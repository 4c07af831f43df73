// Package authtest provides an in-process stand-in for the portal API
// server. Tests and local development use it; the real backend lives in
// another repository.
package authtest

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "portal_session"

// User is an account known to the fake portal.
type User struct {
	UserID       int
	Username     string
	Email        string
	Role         string
	ProfileImage string
	passwordHash []byte
}

type serverSession struct {
	email string
	tabID string
}

type document struct {
	id           int
	fileName     string
	status       string
	rejectReason string
}

// PortalServer is a scriptable fake of the portal API. It speaks both
// session mechanisms: cookie sessions scoped by tab identifier, and
// bearer tokens when IssueTokens is enabled.
type PortalServer struct {
	Server *httptest.Server

	mu             sync.Mutex
	users          map[string]*User          // keyed by email
	sessions       map[string]*serverSession // keyed by cookie value
	documents      map[int]*document
	calls          map[string]int
	nextUserID     int
	nextDocumentID int
	issueTokens    bool
	refreshEnabled bool
	sessionsLive   bool
	tokenTTL       time.Duration
	secret         []byte
}

// NewPortalServer starts the fake portal.
func NewPortalServer() *PortalServer {
	s := &PortalServer{
		users:          make(map[string]*User),
		sessions:       make(map[string]*serverSession),
		documents:      make(map[int]*document),
		calls:          make(map[string]int),
		refreshEnabled: true,
		sessionsLive:   true,
		secret:         []byte(uuid.NewString()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.loginHandler)
	mux.HandleFunc("POST /auth/logout", s.logoutHandler)
	mux.HandleFunc("GET /auth/check-session", s.checkSessionHandler)
	mux.HandleFunc("GET /auth/refresh-session", s.refreshSessionHandler)
	mux.HandleFunc("POST /auth/register", s.registerHandler)
	mux.HandleFunc("POST /auth/update-session", s.updateSessionHandler)
	mux.HandleFunc("GET /project-requests/status", s.requestStatusHandler)
	mux.HandleFunc("GET /project-documents/all", s.documentListHandler)
	// One pattern covers {id}/{action} and resubmit/{id}; registering
	// both shapes would make ServeMux reject them as conflicting.
	mux.HandleFunc("POST /project-documents/{first}/{second}", s.documentReviewHandler)

	s.Server = httptest.NewServer(s.counting(mux))
	return s
}

// URL returns the fake portal's base URL.
func (s *PortalServer) URL() string {
	return s.Server.URL
}

// Close shuts the fake portal down.
func (s *PortalServer) Close() {
	s.Server.Close()
}

// AddUser registers an account with a bcrypt-hashed password.
func (s *PortalServer) AddUser(username, email, password, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("[AddUser] hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	user := &User{
		UserID:       s.nextUserID,
		Username:     username,
		Email:        email,
		Role:         role,
		passwordHash: hash,
	}
	s.users[email] = user
	return user, nil
}

// AddDocument seeds a pending project document and returns its id.
func (s *PortalServer) AddDocument(fileName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDocumentID++
	s.documents[s.nextDocumentID] = &document{
		id:       s.nextDocumentID,
		fileName: fileName,
		status:   "pending",
	}
	return s.nextDocumentID
}

// IssueTokens switches the fake into bearer-token mode: logins answer
// with a signed JWT carrying an expiry claim.
func (s *PortalServer) IssueTokens(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueTokens = true
	s.tokenTTL = ttl
}

// ExpireSessions makes every authenticated endpoint answer 401 until a
// successful refresh.
func (s *PortalServer) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionsLive = false
}

// DisableRefresh makes refresh-session fail, simulating a revoked or
// fully expired server-side session.
func (s *PortalServer) DisableRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshEnabled = false
}

// Calls reports how many requests hit the given path.
func (s *PortalServer) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *PortalServer) counting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *PortalServer) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TabID    string `json:"tabId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	user, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = &serverSession{email: req.Email, tabID: req.TabID}
	s.sessionsLive = true
	issue := s.issueTokens
	ttl := s.tokenTTL
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionID, Path: "/"})

	resp := map[string]string{"role": user.Role}
	if issue {
		token, err := s.signToken(user, ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token signing failed")
			return
		}
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *PortalServer) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *PortalServer) checkSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.resolve(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": true,
		"user": map[string]any{
			"user_id":      user.UserID,
			"username":     user.Username,
			"role":         user.Role,
			"profileImage": user.ProfileImage,
		},
	})
}

func (s *PortalServer) refreshSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	enabled := s.refreshEnabled
	if enabled {
		s.sessionsLive = true
	}
	s.mu.Unlock()

	if !enabled {
		writeError(w, http.StatusUnauthorized, "refresh denied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *PortalServer) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	_, exists := s.users[req.Email]
	s.mu.Unlock()
	if exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	if _, err := s.AddUser(req.Username, req.Email, req.Password, "student"); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *PortalServer) updateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.resolve(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	var req struct {
		Username     string `json:"username"`
		ProfileImage string `json:"profileImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	if req.Username != "" {
		user.Username = req.Username
	}
	user.ProfileImage = req.ProfileImage
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *PortalServer) requestStatusHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.resolve(r); !ok {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": []map[string]any{
			{
				"request_id":       1,
				"project_name_th":  "ระบบจัดการโครงงาน",
				"project_name_eng": "Project Management System",
				"status":           "pending",
			},
		},
	})
}

func (s *PortalServer) documentListHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.resolve(r); !ok {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	s.mu.Lock()
	docs := make([]map[string]any, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, map[string]any{
			"document_id":   doc.id,
			"file_name":     doc.fileName,
			"status":        doc.status,
			"reject_reason": doc.rejectReason,
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, docs)
}

// documentReviewHandler covers resubmit/{id} plus the three review
// actions {id}/approve, {id}/reject and {id}/return. Reject carries a
// reason body; return and resubmit carry a multipart file.
func (s *PortalServer) documentReviewHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.resolve(r); !ok {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	first, second := r.PathValue("first"), r.PathValue("second")

	if first == "resubmit" {
		doc, ok := s.lookupDocument(second)
		if !ok {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		header, ok := formFileHeader(w, r, "replacement file is required")
		if !ok {
			return
		}
		s.mu.Lock()
		doc.fileName = header.Filename
		doc.status = "pending"
		doc.rejectReason = ""
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	doc, ok := s.lookupDocument(first)
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	switch second {
	case "approve":
		s.mu.Lock()
		doc.status = "approved"
		s.mu.Unlock()
	case "reject":
		var req struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
			writeError(w, http.StatusBadRequest, "reason is required")
			return
		}
		s.mu.Lock()
		doc.status = "rejected"
		doc.rejectReason = req.Reason
		s.mu.Unlock()
	case "return":
		if _, ok := formFileHeader(w, r, "annotated file is required"); !ok {
			return
		}
		s.mu.Lock()
		doc.status = "returned"
		s.mu.Unlock()
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func formFileHeader(w http.ResponseWriter, r *http.Request, message string) (*multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeError(w, http.StatusBadRequest, message)
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, message)
		return nil, false
	}
	file.Close()
	return header, true
}

func (s *PortalServer) lookupDocument(rawID string) (*document, bool) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// resolve authenticates a request via bearer token or session cookie.
func (s *PortalServer) resolve(r *http.Request) (*User, bool) {
	s.mu.Lock()
	live := s.sessionsLive
	s.mu.Unlock()
	if !live {
		return nil, false
	}

	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return s.resolveToken(auth[7:])
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	user, ok := s.users[sess.email]
	return user, ok
}

func (s *PortalServer) resolveToken(raw string) (*User, bool) {
	claims := jwtlib.MapClaims{}
	token, err := jwtlib.NewParser(jwtlib.WithValidMethods([]string{"HS256"})).
		ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
			return s.secret, nil
		})
	if err != nil || !token.Valid {
		return nil, false
	}

	email, _ := claims["sub"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	return user, ok
}

func (s *PortalServer) signToken(user *User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := jwtlib.MapClaims{
		"sub":  user.Email,
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
