// Development mode authentication without a backend
package services

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

// Default development credentials.
const (
	defaultDevUser        = "dev_user"
	defaultDevPassword    = "dev_password"
	defaultDevToken       = "dev_token_12345"
	defaultDevExpiryHours = 24
)

// DevAuthOpts configures [DevAuthService]. Zero values fall back to the
// development defaults.
type DevAuthOpts struct {
	Username    string
	Password    string
	TokenSecret string
	ExpiryHours int
	Debug       bool
	Logger      *log.Logger
}

// devClaims is the payload of a minted development JWT.
type devClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// DevAuthService is the development login stub. Login always succeeds and
// issues a local session token with a configurable expiry: the fixed dev
// token, or a minted HS256 JWT when a signing secret is configured. Validity
// is a presence and expiry check only; nothing is ever verified upstream.
type DevAuthService struct {
	username      string
	password      string
	secret        string
	expiryHours   int
	debug         bool
	token         string
	tokenCreated  time.Time
	authenticated bool
	logger        *log.Logger
}

// NewDevAuthService creates the stub with defaults applied.
func NewDevAuthService(opts DevAuthOpts) *DevAuthService {
	if opts.Username == "" {
		opts.Username = defaultDevUser
	}
	if opts.Password == "" {
		opts.Password = defaultDevPassword
	}
	if opts.ExpiryHours <= 0 {
		opts.ExpiryHours = defaultDevExpiryHours
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	svc := &DevAuthService{
		username:    opts.Username,
		password:    opts.Password,
		secret:      opts.TokenSecret,
		expiryHours: opts.ExpiryHours,
		debug:       opts.Debug,
		logger:      opts.Logger,
	}

	if svc.debug {
		svc.logger.Debug("dev auth initialized", "username", svc.username)
	}
	return svc
}

// Username returns the configured development username.
func (s *DevAuthService) Username() string {
	return s.username
}

// Login establishes the development session. It only fails if JWT minting
// does, which requires a broken signing setup.
func (s *DevAuthService) Login() bool {
	token, err := s.mintToken()
	if err != nil {
		s.logger.Error("failed to mint dev token", "err", err)
		return false
	}

	s.token = token
	s.tokenCreated = time.Now().UTC()
	s.authenticated = true

	if s.debug {
		s.logger.Info("dev login successful", "username", s.username)
	}
	return true
}

func (s *DevAuthService) mintToken() (string, error) {
	if s.secret == "" {
		return defaultDevToken, nil
	}

	now := time.Now().UTC()
	claims := devClaims{
		Username: s.username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "jingletube-dev",
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expiryHours) * time.Hour)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// Token returns the session token while it is valid.
func (s *DevAuthService) Token() (string, bool) {
	if !s.Valid() {
		return "", false
	}
	return s.token, true
}

// Valid reports whether a session exists and its token has not expired.
func (s *DevAuthService) Valid() bool {
	if !s.authenticated || s.token == "" || s.tokenCreated.IsZero() {
		return false
	}

	expiry := s.tokenCreated.Add(time.Duration(s.expiryHours) * time.Hour)
	valid := time.Now().UTC().Before(expiry)

	if s.debug && !valid {
		s.logger.Warn("dev token expired", "expired_at", expiry)
	}
	return valid
}

// Refresh restamps the session's issue time, extending its window. The token
// value itself is kept.
func (s *DevAuthService) Refresh() bool {
	if !s.authenticated {
		if s.debug {
			s.logger.Warn("cannot refresh dev token without a session")
		}
		return false
	}

	s.tokenCreated = time.Now().UTC()
	if s.debug {
		s.logger.Info("dev token refreshed", "username", s.username)
	}
	return true
}

// Logout clears the session.
func (s *DevAuthService) Logout() bool {
	s.token = ""
	s.tokenCreated = time.Time{}
	s.authenticated = false

	if s.debug {
		s.logger.Info("dev user logged out", "username", s.username)
	}
	return true
}

// AuthHeaders returns the headers for authenticated requests, or nil when no
// valid session exists.
func (s *DevAuthService) AuthHeaders() map[string]string {
	token, ok := s.Token()
	if !ok {
		return nil
	}
	return map[string]string{
		"Authorization": "Bearer " + token,
		"X-Dev-Auth":    "true",
	}
}

// Status reports the session state for status output.
func (s *DevAuthService) Status() map[string]any {
	status := map[string]any{
		"username":           s.username,
		"is_authenticated":   s.authenticated,
		"token_valid":        s.Valid(),
		"token_expiry_hours": s.expiryHours,
		"debug_mode":         s.debug,
	}
	if !s.tokenCreated.IsZero() {
		status["created_at"] = s.tokenCreated.Format(time.RFC3339)
	}
	return status
}

// AsProvider adapts the stub to the registry contract under the given id.
func (s *DevAuthService) AsProvider(id string) auth.Provider {
	return &devProvider{id: id, svc: s}
}
