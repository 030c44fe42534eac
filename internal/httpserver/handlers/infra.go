package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
)

type componentStatus struct {
	OK               bool   `json:"ok"`
	BusinessesLoaded *int   `json:"businesses_loaded,omitempty"`
	LastReload       string `json:"last_reload,omitempty"`
	Mode             string `json:"mode,omitempty"`
	Impact           string `json:"impact,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	ClientID   string                     `json:"client_id"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the status of each component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Auth.Status()

		count := d.MemoryIndex.Count()
		lastReload := "never"
		if t := d.MemoryIndex.GetLastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"identity_provider": identityStatus(st),
			"session": {
				OK:     st.Authenticated,
				Mode:   sessionMode(st),
				Impact: sessionImpact(st),
			},
			"businesses": {
				OK:               count > 0,
				BusinessesLoaded: &count,
				LastReload:       lastReload,
			},
			"redis": redisComponent(redisState(r.Context(), d)),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			ClientID:   st.ClientID,
			Components: components,
		})
	}
}

func identityStatus(st auth.Status) componentStatus {
	c := componentStatus{OK: st.State == auth.ReadyStateReady, Mode: string(st.State)}
	if st.State == auth.ReadyStateUnavailable {
		c.Impact = "login-disabled"
	}
	return c
}

func sessionMode(st auth.Status) string {
	switch {
	case st.Authenticated:
		return "authenticated"
	case st.Pending:
		return "consent-pending"
	default:
		return "anonymous"
	}
}

func sessionImpact(st auth.Status) string {
	if st.Authenticated {
		return ""
	}
	return "dashboard-empty"
}

func redisComponent(state string) componentStatus {
	switch state {
	case "up":
		return componentStatus{OK: true, Mode: "optimal"}
	case "disabled":
		return componentStatus{OK: true, Mode: "disabled", Impact: "consent-required-after-restart"}
	default:
		return componentStatus{OK: false, Mode: "degraded", Impact: "credential-not-persisted"}
	}
}

func determineMode(components map[string]componentStatus) string {
	if idp := components["identity_provider"]; idp.Mode == string(auth.ReadyStateUnavailable) {
		return "critical"
	}
	for _, name := range []string{"identity_provider", "session", "redis"} {
		if !components[name].OK {
			return "degraded"
		}
	}
	return "operational"
}
