package businessprofile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/metrics"
)

// AccountResult is the outcome of listing one account's locations.
// Err is set when that account could not be walked; Businesses is then empty.
type AccountResult struct {
	Account    string
	Businesses []domain.Business
	Err        error
}

// WalkAccounts lists the caller's accounts, then fetches every account's
// locations concurrently. Only the account listing can fail the walk: a
// failing account is reported in its own AccountResult.
func (c *Client) WalkAccounts(ctx context.Context) ([]AccountResult, error) {
	var accounts accountsResponse
	if err := c.get(ctx, "accounts.list", c.endpoints.accountsURL(), &accounts); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts.Accounts) == 0 {
		return nil, nil
	}

	results := make([]AccountResult, len(accounts.Accounts))

	// Goroutines never return an error so one failing account cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, acc := range accounts.Accounts {
		g.Go(func() error {
			results[i] = c.walkAccount(ctx, acc.Name)
			return nil
		})
	}
	_ = g.Wait()

	// Cancellation fails every remaining account; that is not a partial result.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("business walk interrupted: %w", err)
	}

	return results, nil
}

func (c *Client) walkAccount(ctx context.Context, accountName string) AccountResult {
	res := AccountResult{Account: accountName}

	var locs locationsResponse
	if err := c.get(ctx, "locations.list", c.endpoints.locationsURL(accountName), &locs); err != nil {
		res.Err = err
		return res
	}

	res.Businesses = make([]domain.Business, 0, len(locs.Locations))
	for _, loc := range locs.Locations {
		res.Businesses = append(res.Businesses, mapLocation(loc))
	}
	return res
}

// ListBusinesses returns the union of locations of every account that could be
// walked. Zero accounts yields an empty list, not an error.
func (c *Client) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	results, err := c.WalkAccounts(ctx)
	if err != nil {
		c.logger.Error("failed to fetch businesses", logger.Error(err))
		return nil, err
	}

	businesses := make([]domain.Business, 0)
	for _, res := range results {
		if res.Err != nil {
			metrics.IncAccountWalkFailure()
			c.logger.Warn("could not fetch locations for account",
				logger.String("account", res.Account),
				logger.Error(res.Err))
			continue
		}
		businesses = append(businesses, res.Businesses...)
	}

	metrics.SetBusinessesDiscovered(len(businesses))
	c.logger.Info("businesses discovered",
		logger.Int("accounts", len(results)),
		logger.Int("businesses", len(businesses)))

	return businesses, nil
}
