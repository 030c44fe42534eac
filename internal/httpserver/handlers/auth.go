package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

type authStatusResponse struct {
	auth.Status
	Origin string `json:"origin"`
}

// AuthStatus returns the handshake state and the origin to allow-list.
func AuthStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authStatusResponse{
			Status: d.Auth.Status(),
			Origin: d.PublicOrigin,
		})
	}
}

type clientRequest struct {
	ClientID string `json:"client_id"`
}

// SetClient re-initializes the handshake with another client id. The old
// credential and every dashboard list are dropped.
func SetClient(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clientRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}
		clientID := strings.TrimSpace(req.ClientID)
		if clientID == "" {
			writeBadRequest(w, errors.New("client_id is required"))
			return
		}

		prev := d.Session.ClientID()
		d.Auth.Start(r.Context(), clientID, d.OnGranted)

		if prev != clientID {
			d.Logger.Info("client id replaced",
				logger.String("previous", prev),
				logger.String("client_id", clientID))
			if d.OnClientChanged != nil {
				d.OnClientChanged(prev)
			}
		}

		writeJSON(w, http.StatusAccepted, authStatusResponse{
			Status: d.Auth.Status(),
			Origin: d.PublicOrigin,
		})
	}
}

type loginResponse struct {
	ConsentURL string `json:"consent_url"`
	State      string `json:"state"`
}

// Login opens a consent attempt and returns the URL the owner must visit.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := d.Auth.TriggerLogin(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{ConsentURL: attempt.URL, State: attempt.State})
	}
}

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html lang="fr">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p>{{.Message}}</p>
{{if .OK}}<script>if (window.opener) { window.opener.postMessage("storefront:granted", {{.Origin}}); window.close(); }</script>{{end}}
</body>
</html>
`))

type callbackView struct {
	OK      bool
	Title   string
	Message string
	Origin  string
}

// Callback receives the provider redirect and resolves the pending attempt.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := q.Get("state")

		if errType := q.Get("error"); errType != "" {
			authErr := &auth.AuthError{Type: errType, Message: q.Get("error_description")}
			err := d.Auth.Fail(state, authErr)
			// A dismissed consent shows the remediation even when its attempt is gone.
			if errors.Is(err, auth.ErrUnknownAttempt) && !authErr.Declined() {
				renderCallback(w, d, statusFor(err), callbackView{Title: "Erreur", Message: err.Error()})
				return
			}
			renderCallback(w, d, http.StatusUnauthorized, callbackView{
				Title:   "Connexion refusée",
				Message: authErr.UserMessage(d.PublicOrigin),
			})
			return
		}

		if _, err := d.Auth.Complete(r.Context(), state, q.Get("code")); err != nil {
			msg := err.Error()
			if authErr, ok := auth.AsAuthError(err); ok {
				msg = authErr.UserMessage(d.PublicOrigin)
			}
			renderCallback(w, d, statusFor(err), callbackView{Title: "Erreur", Message: msg})
			return
		}

		renderCallback(w, d, http.StatusOK, callbackView{
			OK:      true,
			Title:   "Connecté",
			Message: "✅ Connexion réussie, vous pouvez fermer cette fenêtre.",
		})
	}
}

func renderCallback(w http.ResponseWriter, d deps.Deps, status int, v callbackView) {
	v.Origin = d.PublicOrigin
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := callbackPage.Execute(w, v); err != nil {
		d.Logger.Debug("failed to render callback page", logger.Error(err))
	}
}
