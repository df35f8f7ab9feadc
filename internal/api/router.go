package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/Disha/internal/middleware"
	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
	"github.com/soaringjerry/Disha/internal/services"
	"github.com/soaringjerry/Disha/internal/utils"
)

const maxBodyBytes = 1 << 20

// BuildInfo is reported by /health and /version.
type BuildInfo struct {
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Deps wires the router. Summary and Auth may be nil: reports then use the
// template summary, login answers 403 and every other admin route 401.
type Deps struct {
	Store       Store
	Summary     *services.BestEffortSummarizer
	Auth        *services.AuthService
	TokenAuth   *middleware.TokenAuth
	Log         *logger.Logger
	Build       BuildInfo
	StaticDir   string
	CORSOrigins []string
	TrustProxy  bool
}

type Router struct {
	sessions  *services.SessionService
	reports   *services.ReportAssembler
	export    *services.ExportService
	analytics *services.AnalyticsService
	auth      *services.AuthService
	tokenAuth *middleware.TokenAuth
	log       *logger.Logger
	deps      Deps
}

func NewRouter(d Deps) *Router {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Store == nil {
		d.Store = NewMemoryStore()
	}
	if d.TokenAuth == nil {
		d.TokenAuth = middleware.NewTokenAuth("")
	}
	return &Router{
		sessions:  services.NewSessionService(d.Store, d.Store, d.Log),
		reports:   services.NewReportAssembler(d.Summary, d.Log),
		export:    services.NewExportService(d.Store, d.Store, d.Log),
		analytics: services.NewAnalyticsService(d.Store),
		auth:      d.Auth,
		tokenAuth: d.TokenAuth,
		log:       d.Log.With("component", "api"),
		deps:      d,
	}
}

type denyAll struct{}

func (denyAll) Valid(context.Context, string) (bool, error) { return false, nil }

// Register mounts every route on mux.
func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/version", rt.handleVersion)

	mux.HandleFunc("/api/types", rt.handleTypes)                // GET
	mux.HandleFunc("/api/questions", rt.handleQuestions)        // GET
	mux.HandleFunc("/api/sessions", rt.handleRegister)          // POST
	mux.HandleFunc("/api/sessions/complete", rt.handleComplete) // POST
	mux.HandleFunc("/api/sessions/", rt.handlePublicSession)    // GET /api/sessions/{id}/report

	mux.HandleFunc("/api/admin/login", rt.handleLogin) // POST
	var validator middleware.TokenValidator = denyAll{}
	if rt.auth != nil {
		validator = rt.auth
	}
	admin := rt.tokenAuth.RequireAdmin(validator)
	mux.Handle("/api/admin/logout", admin(http.HandlerFunc(rt.handleLogout)))
	mux.Handle("/api/admin/sessions", admin(http.HandlerFunc(rt.handleAdminSessions)))
	mux.Handle("/api/admin/sessions/", admin(http.HandlerFunc(rt.handleAdminSession)))
	mux.Handle("/api/admin/stats", admin(http.HandlerFunc(rt.handleStats)))
	mux.Handle("/api/admin/export", admin(http.HandlerFunc(rt.handleExport)))
	mux.Handle("/api/admin/analytics", admin(http.HandlerFunc(rt.handleAnalytics)))
	mux.Handle("/api/admin/audit", admin(http.HandlerFunc(rt.handleAudit)))

	if rt.deps.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(rt.deps.StaticDir)))
	}
}

// Handler returns the routed mux wrapped in the standard middleware chain.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	rt.Register(mux)
	var h http.Handler = mux
	h = middleware.LocaleMiddleware(h)
	h = middleware.ClientInfoMiddleware(rt.deps.TrustProxy)(h)
	h = middleware.NoStore(h)
	h = middleware.SecureHeaders(h)
	h = middleware.CORS(rt.deps.CORSOrigins)(h)
	h = middleware.RequestLog(rt.deps.Log)(h)
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

// writeServiceError maps service failures onto HTTP. Storage and integrity
// failures are logged and reported generically.
func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeErrorJSON(w, status, string(se.Code), se.Message)
		return
	}
	if errors.Is(err, services.ErrIncomplete) {
		writeErrorJSON(w, http.StatusConflict, string(services.ErrorConflict), "session is not complete")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if errors.Is(err, services.ErrDataIntegrity) {
		rt.log.Error("data integrity failure", "path", r.URL.Path, "error", err)
	} else {
		rt.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeErrorJSON(w, http.StatusInternalServerError, "internal", utils.T(locale, "error.internal"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErrorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, string(services.ErrorInvalid), "invalid JSON body")
		return false
	}
	return true
}

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       "Disha API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.deps.Build.Commit,
		"build_time": rt.deps.Build.BuildTime,
	})
}

// GET /version
func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.deps.Build)
}

// GET /api/types
func (rt *Router) handleTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	type outType struct {
		models.InterestType
		DisplayName string `json:"display_name"`
	}
	types := models.InterestTypes()
	out := make([]outType, 0, len(types))
	for _, it := range types {
		name := it.Name
		if locale == "ne" && it.LocalName != "" {
			name = it.LocalName
		}
		out = append(out, outType{InterestType: it, DisplayName: name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": out, "max_score": models.MaxScore})
}

// GET /api/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": models.Questions()})
}

func clientInfo(r *http.Request) services.ClientInfo {
	c := middleware.ClientInfoFromContext(r.Context())
	return services.ClientInfo{UserAgent: c.UserAgent, IPAddress: c.IPAddress}
}

// POST /api/sessions  body: profile
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var profile models.Profile
	if !decodeBody(w, r, &profile) {
		return
	}
	id, err := rt.sessions.Register(r.Context(), profile, clientInfo(r))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": id, "status": models.StatusIncomplete})
}

type completeBody struct {
	SessionID    string            `json:"session_id"`
	Profile      models.Profile    `json:"profile"`
	Answers      map[string]string `json:"answers"`
	Scores       models.Scores     `json:"scores"`
	TopThreeCode string            `json:"top_three_code"`
	TimeTaken    int               `json:"time_taken"`
	CompletedAt  *time.Time        `json:"completed_at"`
}

// POST /api/sessions/complete
func (rt *Router) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body completeBody
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := rt.sessions.Complete(r.Context(), services.CompleteRequest{
		SessionID:    body.SessionID,
		Profile:      body.Profile,
		Answers:      body.Answers,
		Scores:       body.Scores,
		TopThreeCode: body.TopThreeCode,
		TimeTaken:    body.TimeTaken,
		CompletedAt:  body.CompletedAt,
		Client:       clientInfo(r),
	})
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     res.Session.SessionID,
		"top_three_code": res.Session.TopThreeCode,
		"scores":         res.Session.Scores,
		"status":         res.Session.Status,
		"created":        res.Created,
	})
}

// sessionPath splits "/api/.../sessions/{id}[/sub]" after prefix.
func sessionPath(path, prefix string) (id, sub string) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, sub, _ = strings.Cut(rest, "/")
	return id, sub
}

// GET /api/sessions/{id}/report?format=json|html|markdown
func (rt *Router) handlePublicSession(w http.ResponseWriter, r *http.Request) {
	id, sub := sessionPath(r.URL.Path, "/api/sessions/")
	if id == "" || sub != "report" {
		writeErrorJSON(w, http.StatusNotFound, string(services.ErrorNotFound), "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rt.serveReport(w, r, id)
}

func (rt *Router) serveReport(w http.ResponseWriter, r *http.Request, id string) {
	renderer, ok := RendererFor(r.URL.Query().Get("format"))
	if !ok {
		writeErrorJSON(w, http.StatusBadRequest, string(services.ErrorInvalid), "format must be json, html, markdown or terminal")
		return
	}
	sess, err := rt.sessions.Get(r.Context(), id)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	doc, err := rt.reports.AssembleLocale(r.Context(), sess, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, doc); err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// POST /api/admin/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if rt.auth == nil {
		writeErrorJSON(w, http.StatusForbidden, string(services.ErrorForbidden), "admin login disabled")
		return
	}
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := rt.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/admin/logout
func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	c, _ := middleware.ClaimsFromContext(r.Context())
	if err := rt.auth.Logout(r.Context(), c.ID, c.Subject); err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/admin/sessions?status=
func (rt *Router) handleAdminSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	list, err := rt.sessions.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}

// GET|DELETE /api/admin/sessions/{id}, GET /api/admin/sessions/{id}/report
func (rt *Router) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	id, sub := sessionPath(r.URL.Path, "/api/admin/sessions/")
	if id == "" {
		writeErrorJSON(w, http.StatusNotFound, string(services.ErrorNotFound), "not found")
		return
	}
	switch {
	case sub == "report" && r.Method == http.MethodGet:
		rt.serveReport(w, r, id)
	case sub == "" && r.Method == http.MethodGet:
		rt.serveAnswerReview(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		if err := rt.sessions.Delete(r.Context(), id, middleware.ActorFromContext(r.Context())); err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "session_id": id})
	case sub == "" || sub == "report":
		methodNotAllowed(w)
	default:
		writeErrorJSON(w, http.StatusNotFound, string(services.ErrorNotFound), "not found")
	}
}

type answerReview struct {
	QuestionID string          `json:"question_id"`
	Type       models.TypeCode `json:"type,omitempty"`
	Text       string          `json:"text,omitempty"`
	Answer     string          `json:"answer"`
	Counted    bool            `json:"counted"`
}

func (rt *Router) serveAnswerReview(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := rt.sessions.Get(r.Context(), id)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess, "answers": reviewAnswers(sess.Answers)})
}

// reviewAnswers lists answers in question-bank order; unknown ids follow,
// sorted.
func reviewAnswers(answers map[string]string) []answerReview {
	out := make([]answerReview, 0, len(answers))
	seen := map[string]bool{}
	for _, q := range models.Questions() {
		for k, v := range answers {
			if strings.EqualFold(strings.TrimSpace(k), q.ID) {
				out = append(out, answerReview{QuestionID: q.ID, Type: q.Type, Text: q.Text, Answer: v, Counted: models.AffirmativeAnswer(v)})
				seen[k] = true
				break
			}
		}
	}
	var extra []string
	for k := range answers {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, answerReview{QuestionID: k, Answer: answers[k]})
	}
	return out
}

// GET /api/admin/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	c, err := rt.sessions.Counts(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GET /api/admin/export?status=
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	res, err := rt.export.ExportCSV(r.Context(), r.URL.Query().Get("status"), middleware.ActorFromContext(r.Context()))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}

// GET /api/admin/analytics?top=
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	top := 0
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErrorJSON(w, http.StatusBadRequest, string(services.ErrorInvalid), "top must be a positive integer")
			return
		}
		top = n
	}
	sum, err := rt.analytics.Summary(r.Context(), top)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/admin/audit
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	entries, err := rt.auth.Audit(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
