package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // godotenv loads a .env file into the process environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    BaseURL         string // public base URL used in confirmation links
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign JWTs
    AccessTTLMin    int    // access token time-to-live in minutes
    RefreshTTLDays  int    // refresh token time-to-live in days
    EmailTokenDays  int    // email confirmation token time-to-live in days
    BcryptCost      int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file is loaded first when present so local development
// does not require exporting every variable.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
    _ = godotenv.Load() // missing .env is fine in containerized deployments

    return Config{
        Env:            must("APP_ENV"),      // environment (dev/test/prod)
        Port:           must("APP_PORT"),     // port to bind the HTTP server
        BaseURL:        must("APP_BASE_URL"), // e.g. http://localhost:8080/
        DBUser:         must("DB_USER"),      // database user
        DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:         must("DB_HOST"),      // database host
        DBPort:         must("DB_PORT"),      // database port
        DBName:         must("DB_NAME"),      // database name
        JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),   // TTL for access tokens in minutes
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),  // TTL for refresh tokens in days
        EmailTokenDays: envInt("EMAIL_TOKEN_TTL_DAYS", 7),    // TTL for confirmation tokens in days
        BcryptCost:     envInt("BCRYPT_COST", 10),            // bcrypt cost factor
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// envInt reads an integer environment variable, falling back to a default
// when the variable is unset.  An unparseable value is treated as a
// configuration error and exits the program.
func envInt(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
