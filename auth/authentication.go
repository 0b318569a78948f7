package auth

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/users"
)

var (
	ErrUnauthenticated          = fmt.Errorf("subject is not a known active user")
	SubjectIdHeaderKey          = "x-auth-subject-id"
	DefaultCacheSize            = 10000           // Cache up to 10000 subjects
	DefaultCacheEntryExpiration = 5 * time.Minute // Cache subjects for 5 minutes
)

type Authenticator interface {
	ValidateAndSetAuthData(subjectId string, ec echo.Context) (bool, error)
}

type UserAuthenticator struct {
	users users.Service
}

var _ Authenticator = &UserAuthenticator{}

type AuthMiddlewareOpts struct {
	Skipper middleware.Skipper
}

func NewAuthMiddleware(authenticator Authenticator, opts AuthMiddlewareOpts) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Allow skipping authentication for certain routes (e.g. readiness probe)
			if opts.Skipper != nil {
				if opts.Skipper(c) {
					return next(c)
				}
			}

			subjectId := GetSubjectId(c.Request())
			if subjectId == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "subject id is missing")
			}

			valid, err := authenticator.ValidateAndSetAuthData(subjectId, c)
			if err != nil {
				return &echo.HTTPError{
					Code:     http.StatusUnauthorized,
					Message:  "subject is not authenticated",
					Internal: err,
				}
			} else if valid {
				return next(c)
			}
			return echo.ErrUnauthorized
		}
	}
}

// GetSubjectId extracts the authenticated subject from the request. The
// gateway either forwards the subject id directly or passes through the
// bearer token it has already verified, in which case the subject claim
// is read without re-verification.
func GetSubjectId(r *http.Request) string {
	if subjectId := r.Header.Get(SubjectIdHeaderKey); subjectId != "" {
		return subjectId
	}

	header := r.Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

// NewAuthenticator returns a user authenticator that caches lookups
func NewAuthenticator(users users.Service) (Authenticator, error) {
	delegate := NewUserAuthenticator(users)
	return NewCachingAuthenticator(
		DefaultCacheSize,
		DefaultCacheEntryExpiration,
		delegate,
	)
}

func NewUserAuthenticator(users users.Service) Authenticator {
	return &UserAuthenticator{users: users}
}

func (u *UserAuthenticator) ValidateAndSetAuthData(subjectId string, ec echo.Context) (bool, error) {
	ctx := ec.Request().Context()
	user, err := u.users.Get(ctx, subjectId)
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, users.ErrInactive
	}

	SetAuthData(ec, user.Caller())

	// Last login is informational, a failed update must not block the request
	_ = u.users.TouchLastLogin(ctx, subjectId)
	return true, nil
}

func SetAuthData(ec echo.Context, caller access.Caller) {
	ctx := access.WithCaller(ec.Request().Context(), caller)
	ec.SetRequest(ec.Request().WithContext(ctx))
}

type CacheEntry struct {
	subjectId string
	caller    access.Caller
	expiry    time.Time
}

func (c CacheEntry) IsExpired() bool {
	return time.Now().After(c.expiry)
}

type CachingAuthenticator struct {
	delegate   Authenticator
	expiration time.Duration
	lru        *simplelru.LRU
	mu         *sync.Mutex
}

var _ Authenticator = &CachingAuthenticator{}

func NewCachingAuthenticator(size int, expiration time.Duration, delegate Authenticator) (Authenticator, error) {
	var onEvict simplelru.EvictCallback
	lru, err := simplelru.NewLRU(size, onEvict)
	if err != nil {
		return nil, err
	}

	return &CachingAuthenticator{
		delegate:   delegate,
		expiration: expiration,
		lru:        lru,
		mu:         &sync.Mutex{},
	}, nil
}

func (c *CachingAuthenticator) ValidateAndSetAuthData(subjectId string, ec echo.Context) (bool, error) {
	entry := c.getCachedEntry(subjectId)
	if entry != nil {
		SetAuthData(ec, entry.caller)
		return true, nil
	}

	res, err := c.delegate.ValidateAndSetAuthData(subjectId, ec)
	if res && err == nil {
		if caller, cerr := access.CallerFromContext(ec.Request().Context()); cerr == nil {
			c.setCacheEntry(CacheEntry{
				subjectId: subjectId,
				caller:    caller,
				expiry:    time.Now().Add(c.expiration),
			})
		}
	}

	return res, err
}

func (c *CachingAuthenticator) getCachedEntry(subjectId string) *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Get(subjectId); ok {
		entry := e.(CacheEntry)
		if entry.IsExpired() {
			c.lru.Remove(subjectId)
			return nil
		}
		return &entry
	}

	return nil
}

func (c *CachingAuthenticator) setCacheEntry(entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.lru.Add(entry.subjectId, entry)
}
