package utils

import (
	"time"
)

// Context keys for request-scoped values
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Cache constants
const (
	// CountryListCacheKey is the redis key holding the country reference
	// list. The configured cache prefix is prepended at use sites.
	CountryListCacheKey = "countries"

	// CountryListCacheTTL bounds staleness of the country reference cache
	CountryListCacheTTL = 12 * time.Hour

	// AssociationCacheKeyPrefix prefixes per-engagement cached association responses
	AssociationCacheKeyPrefix = "association:"

	// AssociationCacheTTL bounds staleness of cached association responses
	AssociationCacheTTL = 5 * time.Minute
)
