package handlers

import "net/http"

// Routes groups the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Lessons    *LessonHandler
	Exercises  *ExerciseHandler
	Progress   *ProgressHandler
	Dictionary *DictionaryHandler
	Feedback   *FeedbackHandler
	Admin      *AdminHandler
	Health     http.HandlerFunc
}

// Register adds every API route to mux
func (rt Routes) Register(mux *http.ServeMux) {
	m := rt.Middleware

	mux.HandleFunc("GET /healthz", rt.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", m.RequireAuth(rt.Auth.Logout))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.Providers)
	mux.HandleFunc("GET /api/auth/{provider}/start", m.RateLimit(rt.Auth.StartOAuth))
	mux.HandleFunc("GET /api/auth/{provider}/callback", m.RateLimit(rt.Auth.OAuthCallback))
	mux.HandleFunc("GET /api/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("DELETE /api/account", m.RequireAuth(rt.Auth.DeleteAccount))

	// Lessons and play
	mux.HandleFunc("GET /api/folders", m.OptionalAuth(rt.Lessons.ListFolders))
	mux.HandleFunc("GET /api/folders/{folder}/{episode}/{part}", m.OptionalAuth(rt.Lessons.GetPart))
	mux.HandleFunc("POST /api/folders/{folder}/{episode}/{part}/runs", m.OptionalAuth(rt.Lessons.StartRun))
	mux.HandleFunc("GET /api/runs/{runId}", m.OptionalAuth(rt.Exercises.GetRun))
	mux.HandleFunc("POST /api/runs/{runId}/exercises/{index}", m.OptionalAuth(rt.Exercises.StartExercise))
	mux.HandleFunc("GET /api/sessions/{id}", m.OptionalAuth(rt.Exercises.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/submit", m.OptionalAuth(rt.Exercises.Submit))
	mux.HandleFunc("POST /api/sessions/{id}/target", m.OptionalAuth(rt.Exercises.Target))
	mux.HandleFunc("POST /api/sessions/{id}/choose", m.OptionalAuth(rt.Exercises.Choose))
	mux.HandleFunc("POST /api/sessions/{id}/draft", m.OptionalAuth(rt.Exercises.Draft))
	mux.HandleFunc("POST /api/sessions/{id}/check", m.OptionalAuth(rt.Exercises.Check))

	// Progress
	mux.HandleFunc("POST /api/progress/{folder}/{episode}/{part}", m.OptionalAuth(rt.Progress.CompletePart))
	mux.HandleFunc("GET /api/scores", m.RequireAuth(rt.Progress.Scores))

	// Dictionary
	mux.HandleFunc("GET /api/dictionary", m.RequireAuth(rt.Dictionary.Dictionary))
	mux.HandleFunc("GET /api/dictionary/{folder}", m.RequireAuth(rt.Dictionary.Folder))
	mux.HandleFunc("POST /api/dictionary/{folder}", m.OptionalAuth(rt.Dictionary.SaveWord))

	mux.HandleFunc("POST /api/feedback", m.RateLimit(m.OptionalAuth(rt.Feedback.Submit)))

	// Admin
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(rt.Admin.ListUsers))
	mux.HandleFunc("GET /api/admin/feedback", m.RequireAdmin(rt.Admin.ListFeedback))
	mux.HandleFunc("GET /api/admin/stats", m.RequireAdmin(rt.Admin.Stats))
	mux.HandleFunc("GET /api/admin/export", m.RequireAdmin(rt.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/import", m.RequireAdmin(rt.Admin.ImportDatabase))
}
