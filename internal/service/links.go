package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/target/golinks/internal/core"
	"github.com/target/golinks/internal/data"
	"github.com/target/golinks/internal/domain/model"
)

var (
	// ErrNotAuthorized is returned when the user holds no prefix grant
	// matching the requested name.
	ErrNotAuthorized = errors.New("user may not register this name")
	// ErrNameExists is returned when the requested name is already registered
	// and force was not set.
	ErrNameExists = errors.New("name already exists")
	// ErrGenerationExhausted is returned when every random-name candidate
	// collided with an existing link.
	ErrGenerationExhausted = errors.New("random name generation exhausted")
	// ErrLinkNotFound is returned by Resolve when no link is registered
	// under the name.
	ErrLinkNotFound = errors.New("link not found")
)

// TargetExistsError reports that the target URL is already reachable under a
// different name. Name carries the existing short name so the caller can
// surface it in the confirmation prompt.
type TargetExistsError struct {
	Name string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("url already linked under %q", e.Name)
}

const (
	// randomNameLength is the length of synthesized short names.
	randomNameLength = 3
	// randomNameAttempts bounds the synthesis retry loop; exhaustion is a
	// definite, reportable outcome, not a retry-forever loop.
	randomNameAttempts = 5

	cacheKeyPrefix = "link:"
)

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// LinkServiceOptions groups dependencies for LinkService.
type LinkServiceOptions struct {
	Store    core.LinkStore
	Cache    core.CacheRepository // optional; nil disables the resolve cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// LinkService owns link registration and resolution. Registration is the
// transactional decision procedure deciding whether to create, update,
// reject, or prompt for confirmation.
type LinkService struct {
	store    core.LinkStore
	cache    core.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger

	// randomName synthesizes a candidate short name. Injectable for tests.
	randomName func(length int) (string, error)
}

// NewLinkService constructs a LinkService.
func NewLinkService(opts LinkServiceOptions) *LinkService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{
		store:      opts.Store,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     logger,
		randomName: randomAlphanumeric,
	}
}

// RegisterInput carries one registration request.
type RegisterInput struct {
	UserID    string
	Name      *string // nil requests a synthesized name
	TargetURL string
	Force     bool
}

// Register executes the registration decision procedure inside one database
// transaction, so the existence checks and the eventual write are atomic
// with respect to concurrent registrations of the same name.
//
// Returns the final short name. Conflicts surface as ErrNameExists or
// *TargetExistsError; authorization failures as ErrNotAuthorized.
func (s *LinkService) Register(ctx context.Context, in RegisterInput) (string, error) {
	var finalName string
	err := s.store.WithTx(ctx, func(tx core.LinkTx) error {
		name, err := s.registerTx(ctx, tx, in)
		if err != nil {
			return err
		}
		finalName = name
		return nil
	})
	if err != nil {
		// An insert that lost the race to a concurrent writer observes the
		// same conflict as one that lost the pre-write existence check.
		if errors.Is(err, data.ErrLinkNameExists) {
			return "", ErrNameExists
		}
		return "", err
	}

	s.invalidate(ctx, finalName)
	return finalName, nil
}

func (s *LinkService) registerTx(ctx context.Context, tx core.LinkTx, in RegisterInput) (string, error) {
	if in.Name == nil {
		return s.registerGenerated(ctx, tx, in.TargetURL)
	}
	return s.registerNamed(ctx, tx, in)
}

// registerGenerated handles registration without a requested name: reuse any
// existing link for the same target, else synthesize a fresh random name.
func (s *LinkService) registerGenerated(ctx context.Context, tx core.LinkTx, targetURL string) (string, error) {
	if existing, err := tx.FindByTarget(ctx, targetURL); err != nil {
		return "", err
	} else if existing != nil {
		// Idempotent reuse: same target, same short link, no write.
		return existing.Name, nil
	}

	name, err := s.freshRandomName(ctx, tx)
	if err != nil {
		return "", err
	}
	if err := tx.Insert(ctx, model.Link{Name: name, TargetURL: targetURL}); err != nil {
		return "", err
	}
	return name, nil
}

// registerNamed handles registration of a caller-chosen name: authorization
// against prefix grants, then collision resolution.
func (s *LinkService) registerNamed(ctx context.Context, tx core.LinkTx, in RegisterInput) (string, error) {
	name := *in.Name

	grants, err := tx.GrantsFor(ctx, in.UserID)
	if err != nil {
		return "", err
	}
	if !anyGrantAllows(grants, name) {
		return "", ErrNotAuthorized
	}

	nameTaken, err := tx.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	other, err := tx.FindByTarget(ctx, in.TargetURL)
	if err != nil {
		return "", err
	}

	if !in.Force {
		if nameTaken {
			return "", ErrNameExists
		}
		if other != nil {
			return "", &TargetExistsError{Name: other.Name}
		}
	}

	link := model.Link{Name: name, TargetURL: in.TargetURL}
	if nameTaken {
		// Overwrite under force. When a different name pointed at the same
		// URL it is left untouched, now shadowed by the new registration.
		err = tx.Update(ctx, link)
	} else {
		err = tx.Insert(ctx, link)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// freshRandomName draws bounded random candidates and returns the first one
// not already registered.
func (s *LinkService) freshRandomName(ctx context.Context, tx core.LinkTx) (string, error) {
	for range randomNameAttempts {
		name, err := s.randomName(randomNameLength)
		if err != nil {
			return "", fmt.Errorf("generate name: %w", err)
		}
		taken, err := tx.Exists(ctx, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", ErrGenerationExhausted
}

// Resolve returns the target URL registered under name, consulting the
// cache before the database. The public redirect path; no authentication.
func (s *LinkService) Resolve(ctx context.Context, name string) (string, error) {
	if target, ok := s.cachedTarget(ctx, name); ok {
		return target, nil
	}

	link, err := s.store.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, data.ErrLinkNotFound) {
			return "", ErrLinkNotFound
		}
		return "", err
	}

	s.cacheTarget(ctx, name, link.TargetURL)
	return link.TargetURL, nil
}

// GrantsFor returns the prefix grants held by the user.
func (s *LinkService) GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error) {
	return s.store.GrantsFor(ctx, userID)
}

func (s *LinkService) cachedTarget(ctx context.Context, name string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, cacheKeyPrefix+name)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve cache get failed", "name", name, "error", err)
		return "", false
	}
	if value == nil {
		return "", false
	}
	return string(value), true
}

func (s *LinkService) cacheTarget(ctx context.Context, name, target string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+name, []byte(target), s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "resolve cache set failed", "name", name, "error", err)
	}
}

// invalidate drops a name from the resolve cache after a successful write.
// Cache failures never fail a registration; the entry expires by TTL.
func (s *LinkService) invalidate(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, cacheKeyPrefix+name); err != nil {
		s.logger.WarnContext(ctx, "resolve cache invalidate failed", "name", name, "error", err)
	}
}

func anyGrantAllows(grants []model.PrefixGrant, name string) bool {
	for _, g := range grants {
		if g.Allows(name) {
			return true
		}
	}
	return false
}

// randomAlphanumeric draws a cryptographically random alphanumeric string.
func randomAlphanumeric(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphanumerics)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumerics[n.Int64()]
	}
	return string(out), nil
}
