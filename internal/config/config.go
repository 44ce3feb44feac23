package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt builds validation errors
    "os"      // os provides access to environment variables
    "strings" // strings normalizes enum-like values
    "time"    // time holds lock TTLs

    "github.com/joho/godotenv" // godotenv pre-populates the environment from a .env file

    "github.com/iliyamo/cinecito/internal/utils" // bcrypt hash check for ADMIN_PASSWORD_HASH
)

// DBConfig carries the five recognized store options.  The scheduler never
// sees these; only the database package turns them into a handle.
type DBConfig struct {
    Host     string // database host address
    Port     string // database port number
    Name     string // database (schema) name
    User     string // database username
    Password string // database password (optional)
}

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env               string        // application environment (e.g. "dev", "prod")
    Port              string        // HTTP port to listen on
    DB                DBConfig      // relational store settings
    Migrate           bool          // run schema migrations on start
    StoreDriver       string        // "mysql" or "memory"
    SlotLock          string        // "local", "redis" or "none"
    SlotLockTTL       time.Duration // lifetime of a distributed slot lock
    SameSlot          string        // "reject" or "noop" for rescheduling onto the held slot
    JWTSecret         string        // secret used to sign JWTs
    AdminUser         string        // operator login name
    AdminPasswordHash string        // bcrypt hash of the operator password; empty disables auth
    AccessTTLMin      int           // access token time-to-live in minutes
    RabbitURL         string        // AMQP URL; empty disables showtime events
    EventLogDir       string        // directory the event consumer appends to
    MetricsUser       string        // basic auth user for /metrics; empty leaves it open
    MetricsPassword   string        // basic auth password for /metrics
}

// Load reads an optional .env file and then the environment.  Invalid
// combinations are reported as an error so main can decide how to exit.
func Load() (Config, error) {
    _ = godotenv.Load() // a missing .env file is fine

    cfg := Config{
        Env:  envStr("APP_ENV", "dev"),
        Port: envStr("APP_PORT", "8080"),
        DB: DBConfig{
            Host:     envStr("DB_HOST", "localhost"),
            Port:     envStr("DB_PORT", "3305"),
            Name:     envStr("DB_NAME", "cinecito"),
            User:     envStr("DB_USER", "root"),
            Password: os.Getenv("DB_PASS"), // empty allowed
        },
        Migrate:           envBool("DB_MIGRATE", true),
        StoreDriver:       strings.ToLower(envStr("STORE_DRIVER", "mysql")),
        SlotLock:          strings.ToLower(envStr("SLOT_LOCK", "local")),
        SlotLockTTL:       envDur("SLOT_LOCK_TTL", 5*time.Second),
        SameSlot:          strings.ToLower(envStr("RESCHEDULE_SAME_SLOT", "reject")),
        JWTSecret:         os.Getenv("JWT_SECRET"),
        AdminUser:         envStr("ADMIN_USER", "admin"),
        AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
        AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),
        RabbitURL:         firstEnv("RABBITMQ_URL", "AMQP_URL"),
        EventLogDir:       envStr("EVENT_LOG_DIR", "logs"),
        MetricsUser:       os.Getenv("METRICS_USER"),
        MetricsPassword:   os.Getenv("METRICS_PASSWORD"),
    }
    return cfg, cfg.Validate()
}

// Validate checks enum values and the auth settings.
func (c Config) Validate() error {
    switch c.StoreDriver {
    case "mysql", "memory":
    default:
        return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
    }
    switch c.SlotLock {
    case "local", "redis", "none":
    default:
        return fmt.Errorf("invalid SLOT_LOCK %q", c.SlotLock)
    }
    switch c.SameSlot {
    case "reject", "noop":
    default:
        return fmt.Errorf("invalid RESCHEDULE_SAME_SLOT %q", c.SameSlot)
    }
    if c.AuthEnabled() {
        if c.JWTSecret == "" {
            return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
        }
        if !utils.IsPasswordHash(c.AdminPasswordHash) {
            return fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash")
        }
    }
    if c.AccessTTLMin < 1 {
        return fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN %d", c.AccessTTLMin)
    }
    return nil
}

// AuthEnabled reports whether write routes require an operator token.
func (c Config) AuthEnabled() bool {
    return c.AdminPasswordHash != ""
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
    for _, k := range keys {
        if v := os.Getenv(k); v != "" {
            return v
        }
    }
    return ""
}
