package scheduler

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/session"
	redisstore "github.com/MrSnakeDoc/storefront/internal/store/redis"
)

// CredentialRestorer reinstalls the persisted credential on startup so a
// restart within the token lifetime does not require a new consent
type CredentialRestorer struct {
	store   *redisstore.Store
	session *session.Session
	logger  logger.Logger
}

// NewCredentialRestorer creates a new credential restorer
func NewCredentialRestorer(
	store *redisstore.Store,
	sess *session.Session,
	log logger.Logger,
) *CredentialRestorer {
	return &CredentialRestorer{
		store:   store,
		session: sess,
		logger:  log,
	}
}

// Restore loads the credential of the session's client id into the session.
// Credentials persisted for other client ids are removed. It reports whether
// the session is now authenticated.
func (cr *CredentialRestorer) Restore(ctx context.Context) (bool, error) {
	clientID := cr.session.ClientID()
	cr.logger.Info("restoring credential from redis", logger.String("client_id", clientID))

	cr.pruneOtherClients(ctx, clientID)

	cred, err := cr.store.LoadCredential(ctx, clientID)
	if errors.Is(err, redisstore.ErrCredentialNotFound) {
		cr.logger.Info("no credential found in redis")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !cr.session.Restore(cred) {
		cr.logger.Info("persisted credential rejected (expired or foreign)")
		if err := cr.store.ClearCredential(ctx, clientID); err != nil {
			cr.logger.Warn("failed to clear rejected credential", logger.Error(err))
		}
		return false, nil
	}

	cr.logger.Info("credential restored",
		logger.String("client_id", clientID),
		logger.Time("expires_at", cred.ExpiresAt))
	return true, nil
}

// pruneOtherClients drops credentials of client ids no longer configured (best effort)
func (cr *CredentialRestorer) pruneOtherClients(ctx context.Context, clientID string) {
	ids, err := cr.store.ListClientIDs(ctx)
	if err != nil {
		cr.logger.Warn("failed to list persisted credentials", logger.Error(err))
		return
	}
	for _, id := range ids {
		if id == clientID {
			continue
		}
		if err := cr.store.ClearCredential(ctx, id); err != nil {
			cr.logger.Warn("failed to remove stale credential",
				logger.String("client_id", id),
				logger.Error(err))
			continue
		}
		cr.logger.Info("removed credential of previous client id", logger.String("client_id", id))
	}
}
