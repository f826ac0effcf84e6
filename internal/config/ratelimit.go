package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig describes one token bucket applied in front of a route.
// Capacity is the burst size; RefillTokens tokens are added every
// RefillInterval.  Contact creation is gated at 5 requests per minute
// and contact listing at 10 per minute, per caller.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    Prefix         string
    Debug          bool
}

// LoadRateLimits returns the two buckets guarding the contact endpoints.
// Both can be disabled together with RATE_LIMIT_ENABLED=false (useful in
// tests and local development without Redis).
func LoadRateLimits() (create, list RateLimitConfig) {
    enabled := envBool("RATE_LIMIT_ENABLED", true)
    debug := envBool("RATE_LIMIT_DEBUG", false)

    create = RateLimitConfig{
        Enabled:        enabled,
        Capacity:       envIntDef("RATE_LIMIT_CREATE_PER_MIN", 5),
        RefillTokens:   envIntDef("RATE_LIMIT_CREATE_PER_MIN", 5),
        RefillInterval: time.Minute,
        TTL:            10 * time.Minute,
        Prefix:         "rl:contacts:create",
        Debug:          debug,
    }
    list = RateLimitConfig{
        Enabled:        enabled,
        Capacity:       envIntDef("RATE_LIMIT_LIST_PER_MIN", 10),
        RefillTokens:   envIntDef("RATE_LIMIT_LIST_PER_MIN", 10),
        RefillInterval: time.Minute,
        TTL:            10 * time.Minute,
        Prefix:         "rl:contacts:list",
        Debug:          debug,
    }
    if create.Capacity < 1 {
        create.Capacity, create.RefillTokens = 1, 1
    }
    if list.Capacity < 1 {
        list.Capacity, list.RefillTokens = 1, 1
    }
    return create, list
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envIntDef(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}
