package deps

import (
	"time"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/dashboard"
	"github.com/MrSnakeDoc/storefront/internal/index"
	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/session"
	redisstore "github.com/MrSnakeDoc/storefront/internal/store/redis"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	AllowedHosts       []string           // Host headers allowed to access the server
	AllowedCIDRS       []string           // IPs allowed to access readyz/infra/metrics
	TrustProxy         bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	PublicOrigin       string             // Origin the owner's browser uses, shown in remediation messages
	Session            *session.Session   // Current delegated credential
	Auth               *auth.Manager      // Consent handshake
	OnGranted          auth.GrantedFunc   // Passed to every (re)initialization
	OnClientChanged    func(prev string)  // Called after the client id changed (nil = no-op)
	Dashboard          *dashboard.Service // Provider operations
	MemoryIndex        *index.MemoryIndex // Dashboard lists
	Store              *redisstore.Store  // Credential persistence (nil when redis is disabled)
	ReloadTrigger      chan struct{}      // Channel to trigger a business reload
	MutationRateLimit  int                // Replies/posts allowed per window and client IP
	MutationRateWindow time.Duration
}
