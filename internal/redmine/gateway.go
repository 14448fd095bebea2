package redmine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dkrasnovs/timetrack/internal/common"
	"github.com/dkrasnovs/timetrack/internal/config"
	"github.com/dkrasnovs/timetrack/internal/credx"
	"github.com/dkrasnovs/timetrack/internal/logging"
	"github.com/dkrasnovs/timetrack/internal/prompt"
)

// maxLoginAttempts bounds the interactive credential prompt. Once exhausted,
// the gateway fails fast for the rest of the session.
const maxLoginAttempts = 3

// Gateway owns the authenticated tracker session. It tries cached
// credentials first, falls back to interactive prompting, and caches the
// working credentials (with consent) for future sessions.
type Gateway struct {
	cfg      *config.Store
	prompter prompt.Prompter
	log      logging.Logger

	// newAPI is a seam for tests.
	newAPI func(baseURL, username, password string) API

	mu        sync.Mutex
	api       API
	user      *User
	exhausted bool
}

func NewGateway(cfg *config.Store, prompter prompt.Prompter, log logging.Logger) *Gateway {
	return &Gateway{
		cfg:      cfg,
		prompter: prompter,
		log:      log.With("component", "redmine"),
		newAPI: func(baseURL, username, password string) API {
			return NewClient(baseURL, username, password)
		},
	}
}

// Connected reports whether a verified session exists.
func (g *Gateway) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.api != nil
}

// User returns the authenticated account, or nil before Connect succeeds.
func (g *Gateway) User() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Connect returns the verified API session, establishing it on first use.
// After the interactive attempts are exhausted it returns
// common.ErrNotConnected immediately without prompting again.
func (g *Gateway) Connect(ctx context.Context) (API, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.api != nil {
		return g.api, nil
	}
	if g.exhausted {
		return nil, fmt.Errorf("%w: login attempts exhausted", common.ErrNotConnected)
	}

	baseURL := g.cfg.RedmineURL()
	if baseURL == "" {
		return nil, fmt.Errorf("%w: no tracker endpoint configured", common.ErrNotConnected)
	}

	if api, user, ok := g.tryStored(ctx, baseURL); ok {
		g.api, g.user = api, user
		return g.api, nil
	}

	api, user, err := g.interactive(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	g.api, g.user = api, user
	return g.api, nil
}

// tryStored offers the cached credentials, verifying them only with the
// user's consent and dropping them when rejected by the tracker.
func (g *Gateway) tryStored(ctx context.Context, baseURL string) (API, *User, bool) {
	encoded := g.cfg.Credentials()
	if encoded == "" {
		return nil, nil, false
	}

	username, password, err := credx.Decode(encoded)
	if err != nil {
		g.log.Warn(ctx, "stored credentials are malformed, discarding", "error", err)
		_ = g.cfg.ClearCredentials()
		return nil, nil, false
	}

	use, err := g.prompter.Confirm(fmt.Sprintf("Use stored credentials for %s?", username))
	if err != nil || !use {
		return nil, nil, false
	}

	api := g.newAPI(baseURL, username, password)
	user, err := api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			g.log.Warn(ctx, "stored credentials rejected, discarding")
			_ = g.cfg.ClearCredentials()
		} else {
			g.log.Error(ctx, "tracker unreachable with stored credentials", "error", err)
		}
		return nil, nil, false
	}

	g.log.Info(ctx, "connected with stored credentials", "login", user.Login)
	return api, user, true
}

// interactive prompts for credentials up to maxLoginAttempts times. A
// transport failure aborts immediately; only a credential rejection retries.
func (g *Gateway) interactive(ctx context.Context, baseURL string) (API, *User, error) {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		username, err := g.prompter.Line("Tracker username")
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", common.ErrNotConnected, err)
		}
		password, err := g.prompter.Password("Tracker password")
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", common.ErrNotConnected, err)
		}

		api := g.newAPI(baseURL, username, password)
		user, err := api.CurrentUser(ctx)
		switch {
		case err == nil:
			g.rememberCredentials(ctx, username, password, user)
			return api, user, nil
		case errors.Is(err, ErrUnauthorized):
			g.log.Warn(ctx, "login rejected", "attempt", attempt, "login", username)
		default:
			return nil, nil, fmt.Errorf("%w: %w", common.ErrNotConnected, err)
		}
	}

	g.exhausted = true
	return nil, nil, fmt.Errorf("%w: login attempts exhausted", common.ErrNotConnected)
}

// rememberCredentials stores the working pair only with explicit consent; the
// authenticated login is recorded either way.
func (g *Gateway) rememberCredentials(ctx context.Context, username, password string, user *User) {
	store, err := g.prompter.Confirm("Store credentials for future sessions?")
	if err != nil || !store {
		if err := g.cfg.SetUser(user.Login); err != nil {
			g.log.Error(ctx, "failed to record login", "error", err)
		}
		return
	}
	if err := g.cfg.SetCredentials(credx.Encode(username, password), user.Login); err != nil {
		g.log.Error(ctx, "failed to store credentials", "error", err)
	}
	g.log.Info(ctx, "credentials stored", "login", user.Login)
}
