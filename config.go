package auth

import "time"

// DefaultMinPasswordLength applies when no config overrides the minimum.
const DefaultMinPasswordLength = 8

// SimpleConfig is a plain struct implementation of Config with sane defaults.
type SimpleConfig struct {
	SigningKey        string
	ContextKey        string
	TokenExpiration   int
	TokenLookup       string
	AuthScheme        string
	Issuer            string
	Audience          []string
	ResetTokenTTL     time.Duration
	MinPasswordLength int
	BaseURL           string
}

var _ Config = (*SimpleConfig)(nil)

// NewSimpleConfig returns a SimpleConfig with defaults applied: 90 day
// sessions, 15 minute reset secrets, 8 character minimum passwords, and
// token lookup in the Authorization header or the session cookie.
func NewSimpleConfig(signingKey string) *SimpleConfig {
	cfg := &SimpleConfig{SigningKey: signingKey}
	cfg.applyDefaults()
	return cfg
}

func (c *SimpleConfig) applyDefaults() {
	if c.ContextKey == "" {
		c.ContextKey = "user"
	}
	if c.TokenExpiration == 0 {
		c.TokenExpiration = 24 * 90
	}
	if c.TokenLookup == "" {
		c.TokenLookup = "header:Authorization,cookie:" + c.ContextKey
	}
	if c.AuthScheme == "" {
		c.AuthScheme = "Bearer"
	}
	if c.ResetTokenTTL == 0 {
		c.ResetTokenTTL = DefaultResetTokenTTL
	}
	if c.MinPasswordLength == 0 {
		c.MinPasswordLength = DefaultMinPasswordLength
	}
}

func (c *SimpleConfig) GetSigningKey() string             { return c.SigningKey }
func (c *SimpleConfig) GetContextKey() string             { return c.ContextKey }
func (c *SimpleConfig) GetTokenExpiration() int           { return c.TokenExpiration }
func (c *SimpleConfig) GetTokenLookup() string            { return c.TokenLookup }
func (c *SimpleConfig) GetAuthScheme() string             { return c.AuthScheme }
func (c *SimpleConfig) GetIssuer() string                 { return c.Issuer }
func (c *SimpleConfig) GetAudience() []string             { return c.Audience }
func (c *SimpleConfig) GetResetTokenTTL() time.Duration   { return c.ResetTokenTTL }
func (c *SimpleConfig) GetMinPasswordLength() int         { return c.MinPasswordLength }
func (c *SimpleConfig) GetBaseURL() string                { return c.BaseURL }
