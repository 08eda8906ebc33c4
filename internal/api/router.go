package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/andremonteiro/diagnostico/internal/middleware"
	"github.com/andremonteiro/diagnostico/internal/services"
	"github.com/andremonteiro/diagnostico/internal/utils"
)

type Router struct {
	store    Store
	auth     *services.AuthService
	catalog  *services.CatalogService
	results  *services.ResultService
	settings *services.SettingsService
	export   *services.ExportService
}

func NewRouter(store Store, signer services.TokenSigner) *Router {
	return &Router{
		store:    store,
		auth:     services.NewAuthService(newAuthStoreAdapter(store), signer),
		catalog:  services.NewCatalogService(newCatalogStoreAdapter(store)),
		results:  services.NewResultService(newResultStoreAdapter(store)),
		settings: services.NewSettingsService(newSettingsStoreAdapter(store)),
		export:   services.NewExportService(newExportStoreAdapter(store)),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister)    // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)          // POST
	mux.HandleFunc("/api/pillars", rt.handlePillars)           // GET, POST
	mux.HandleFunc("/api/pillars/", rt.handlePillarScoped)     // PUT/DELETE /api/pillars/{id}, POST /api/pillars/{id}/questions
	mux.HandleFunc("/api/questions/", rt.handleQuestionScoped) // PUT/DELETE /api/questions/{id}
	mux.HandleFunc("/api/diagnostics", rt.handleDiagnostics)   // GET, POST
	mux.HandleFunc("/api/diagnostics/latest", rt.handleLatest) // GET
	mux.HandleFunc("/api/export", rt.handleExport)             // GET
	mux.HandleFunc("/api/settings", rt.handleSettings)         // GET, PUT
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusInternalServerError
	switch se.Code {
	case services.ErrorInvalid:
		status = http.StatusBadRequest
	case services.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case services.ErrorForbidden:
		status = http.StatusForbidden
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorConflict:
		status = http.StatusConflict
	case services.ErrorBadGateway:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": string(se.Code), "message": se.Message})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return uid, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := requireUser(w, r)
	if !ok {
		return "", false
	}
	if role, _ := middleware.RoleFromContext(r.Context()); role != services.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return uid, true
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": res.Token, "user_id": res.UserID, "role": res.Role})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": res.Token, "user_id": res.UserID, "role": res.Role})
}

// GET /api/pillars — full catalog with questions, in display order.
// POST /api/pillars — admin only.
func (rt *Router) handlePillars(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pillars, err := rt.catalog.ListPillars()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pillars": pillars})
	case http.MethodPost:
		uid, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := rt.catalog.CreatePillar(req.Name, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PUT/DELETE /api/pillars/{id}, POST /api/pillars/{id}/questions
func (rt *Router) handlePillarScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pillars/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "questions" {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		uid, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var req struct {
			Text           string  `json:"text"`
			Points         float64 `json:"points"`
			PositiveAnswer string  `json:"positive_answer"`
			AnswerType     string  `json:"answer_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := rt.catalog.AddQuestion(id, req.Text, req.Points, req.PositiveAnswer, req.AnswerType, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	uid, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.catalog.RenamePillar(id, req.Name, uid); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case http.MethodDelete:
		if err := rt.catalog.DeletePillar(id, uid); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PUT/DELETE /api/questions/{id}
func (rt *Router) handleQuestionScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/questions/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	uid, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPut:
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.catalog.UpdateQuestion(id, raw, uid); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case http.MethodDelete:
		if err := rt.catalog.DeleteQuestion(id, uid); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/diagnostics — submit answers, returns the stored result.
// GET /api/diagnostics — caller's results, newest first.
func (rt *Router) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req struct {
			CompanyData services.CompanyData `json:"company_data"`
			Answers     map[string]string    `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := rt.results.Save(uid, req.CompanyData, req.Answers)
		if err != nil {
			if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorBadGateway {
				locale := middleware.LocaleFromContext(r.Context())
				writeJSON(w, http.StatusBadGateway, map[string]string{
					"error":   string(se.Code),
					"message": utils.T(locale, "result.save_failed"),
				})
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case http.MethodGet:
		results, err := rt.results.ListByOwner(uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/diagnostics/latest — 404 when the caller has none.
func (rt *Router) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	res, err := rt.results.Latest(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res == nil {
		writeServiceError(w, services.NewNotFoundError("no results"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/export?format=results|pillars|xlsx
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	res, err := rt.export.Export(services.ExportParams{OwnerID: uid, Format: r.URL.Query().Get("format")})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}

// GET /api/settings — public branding. PUT — admin only.
func (rt *Router) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		v, err := rt.settings.Get()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case http.MethodPut:
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var req services.Settings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.settings.Update(&req); err != nil {
			writeServiceError(w, err)
			return
		}
		v, err := rt.settings.Get()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Settings returns the settings service so the server can hook change
// notifications (e.g. cache invalidation for static branding).
func (rt *Router) Settings() *services.SettingsService {
	return rt.settings
}
