package utils

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORSMaxAge is the preflight cache lifetime in seconds
const CORSMaxAge = 3600

// Billing constants
const (
	// DefaultCurrency is the currency assumed when a fee rule does not set one
	DefaultCurrency = "USD"

	// DefaultTaxRate is the flat tax rate applied to taxable line items (8%)
	DefaultTaxRate = "0.08"

	// MoneyPrecision is the number of decimal places for monetary amounts
	MoneyPrecision = 2
)

// Cache keys
const (
	// FeeScheduleCacheKey stores the assembled fee schedule configuration
	FeeScheduleCacheKey = "fee_schedule:config"
)
