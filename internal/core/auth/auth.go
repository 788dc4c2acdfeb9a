// Package auth is the backend half of the terminal credential scheme. It looks up
// the terminal's key, re-derives the transmit key from the clientTime sent with
// the request and checks the recovered credentials against the account registry.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dcrodman/termcred/internal/core"
	"github.com/dcrodman/termcred/internal/core/cache"
	"github.com/dcrodman/termcred/internal/core/data"
	"github.com/dcrodman/termcred/internal/core/encryption"
	"github.com/dcrodman/termcred/internal/core/metrics"
)

var (
	ErrUnknown            = errors.New("an unexpected error occurred, please contact your administrator")
	ErrInvalidCredentials = errors.New("identifier/password combination not found")
	ErrAccountBanned      = errors.New("this account has been suspended")
	ErrUnknownTerminal    = errors.New("terminal is not registered or has been deactivated")
	ErrClockSkew          = errors.New("client time is outside of the accepted window")
	ErrReplayed           = errors.New("credential has already been used")
)

// LoginRequest is the body a terminal submits to authenticate a user.
type LoginRequest struct {
	UserID      string    `json:"userId"`
	EncPassword string    `json:"encPassword"`
	ClientTime  time.Time `json:"clientTime"`
	TerminalID  string    `json:"terminalId"`
}

// NewLoginRequest builds the request a terminal would send for id and password.
// clientTime should already be in the clock convention the backend uses.
func NewLoginRequest(terminalID, id, password string, clientTime time.Time, terminalKey []byte) (*LoginRequest, error) {
	// The backend only sees whole seconds.
	clientTime = clientTime.Truncate(time.Second)

	encPassword, err := encryption.GenerateTerminalPassword(id, password, clientTime, terminalKey)
	if err != nil {
		return nil, err
	}
	return &LoginRequest{
		UserID:      id,
		EncPassword: encPassword,
		ClientTime:  clientTime,
		TerminalID:  terminalID,
	}, nil
}

// HashPassword returns password hashed with the strategy used for stored accounts.
func HashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

// Store is the part of the registry a Verifier reads from. Lookups return nil
// without an error when nothing matches.
type Store interface {
	FindTerminal(ctx context.Context, terminalID string) (*data.Terminal, error)
	FindAccount(ctx context.Context, username string) (*data.Account, error)
}

// Verifier checks terminal login requests. It is safe for concurrent use.
type Verifier struct {
	store    Store
	log      logrus.FieldLogger
	location *time.Location
	maxSkew  time.Duration

	// Terminal keys by terminal ID; nil when caching is off.
	keys *cache.Cache
	// Ciphertexts accepted within the skew window.
	seen *cache.Cache

	recorder metrics.Recorder
	now      func() time.Time
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithRecorder reports the outcome of every Verify call to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(v *Verifier) { v.recorder = r }
}

// NewVerifier returns a Verifier configured from cfg. A zero auth.max_clock_skew
// turns off both the skew check and replay expiry. A zero auth.key_cache_ttl
// reads the terminal from the store on every request, so registry changes
// apply immediately; otherwise they can take up to the TTL to be noticed.
func NewVerifier(cfg *core.Config, store Store, log logrus.FieldLogger, opts ...Option) (*Verifier, error) {
	location, err := cfg.ClockLocation()
	if err != nil {
		return nil, err
	}
	replayTTL := time.Duration(-1)
	if cfg.Auth.MaxClockSkew > 0 {
		// Anything older than this fails the skew check anyway.
		replayTTL = 2 * cfg.Auth.MaxClockSkew
	}

	v := &Verifier{
		store:    store,
		log:      log,
		location: location,
		maxSkew:  cfg.Auth.MaxClockSkew,
		seen:     cache.New(replayTTL),
		recorder: metrics.Discard,
		now:      time.Now,
	}
	if cfg.Auth.KeyCacheTTL > 0 {
		v.keys = cache.New(cfg.Auth.KeyCacheTTL)
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify authenticates req and returns the matching account.
func (v *Verifier) Verify(ctx context.Context, req LoginRequest) (*data.Account, error) {
	account, err := v.verify(ctx, req)
	v.recorder.RecordLogin(req.TerminalID, Outcome(err), v.now())
	return account, err
}

// Outcome names the result of a Verify call for reporting.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountBanned):
		return "banned"
	case errors.Is(err, ErrUnknownTerminal):
		return "unknown_terminal"
	case errors.Is(err, ErrClockSkew):
		return "clock_skew"
	case errors.Is(err, ErrReplayed):
		return "replayed"
	default:
		return "error"
	}
}

func (v *Verifier) verify(ctx context.Context, req LoginRequest) (*data.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := v.log.WithFields(logrus.Fields{"terminal": req.TerminalID, "user": req.UserID})

	terminalKey, err := v.terminalKey(ctx, req.TerminalID)
	if err != nil {
		if !errors.Is(err, ErrUnknownTerminal) {
			log.WithError(err).Warn("error looking up terminal")
		}
		return nil, err
	}

	if v.maxSkew > 0 {
		if skew := v.now().Sub(req.ClientTime); skew > v.maxSkew || skew < -v.maxSkew {
			log.WithField("skew", skew).Info("rejected credential outside of the clock window")
			return nil, ErrClockSkew
		}
	}

	clientTime := req.ClientTime.In(v.location)
	id, password, err := encryption.RecoverTerminalPassword(req.EncPassword, len(req.UserID), clientTime, terminalKey[:])
	if err != nil {
		log.WithError(err).Debug("could not recover credentials")
		return nil, ErrInvalidCredentials
	}
	if id != req.UserID {
		return nil, ErrInvalidCredentials
	}

	account, err := v.store.FindAccount(ctx, id)
	if err != nil {
		log.WithError(err).Warn("error in FindAccount")
		return nil, ErrUnknown
	}
	if account == nil || subtle.ConstantTimeCompare([]byte(account.Password), []byte(HashPassword(password))) != 1 {
		return nil, ErrInvalidCredentials
	} else if account.Banned {
		return nil, ErrAccountBanned
	}

	// Keyed on the ciphertext rather than its transport encoding.
	ciphertext, err := encryption.DecodeBase64(req.EncPassword)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !v.seen.PutIfAbsent(req.TerminalID+"|"+string(ciphertext), true, 0) {
		log.Info("rejected replayed credential")
		return nil, ErrReplayed
	}
	return account, nil
}

// InvalidateTerminal drops any cached key for terminalID.
func (v *Verifier) InvalidateTerminal(terminalID string) {
	if v.keys != nil {
		v.keys.Delete(terminalID)
	}
}

func (v *Verifier) terminalKey(ctx context.Context, terminalID string) (encryption.TerminalKey, error) {
	if v.keys != nil {
		if cached, ok := v.keys.Get(terminalID); ok {
			return cached.(encryption.TerminalKey), nil
		}
	}

	terminal, err := v.store.FindTerminal(ctx, terminalID)
	if err != nil {
		return encryption.TerminalKey{}, fmt.Errorf("finding terminal: %w", err)
	}
	if terminal == nil || !terminal.Active {
		return encryption.TerminalKey{}, ErrUnknownTerminal
	}
	key, err := encryption.ParseTerminalKey(terminal.Key)
	if err != nil {
		return encryption.TerminalKey{}, fmt.Errorf("terminal %s has an invalid key: %w", terminalID, err)
	}

	if v.keys != nil {
		v.keys.Put(terminalID, key, 0)
	}
	return key, nil
}
