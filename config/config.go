package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Store     StoreConfig
	Firebase  FirebaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Email     EmailConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Defaults  DefaultsConfig
}

type ServerConfig struct {
	Port               string
	StaticDir          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

type StoreConfig struct {
	// Driver is one of firestore, postgres, memory.
	Driver      string
	DSN         string
	AutoMigrate bool
	ConnectTO   time.Duration
	PingTO      time.Duration
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
	CredentialsJSON string
	// WebAPIKey is only used by portfolioctl to sign in against the REST API.
	WebAPIKey string
}

type AuthConfig struct {
	// Provider is one of firebase, local.
	Provider           string
	AllowedAdminEmails []string
	CookieName         string
	CookieTTL          time.Duration
	CheckRevoked       bool
	VerifyCacheTTL     time.Duration
	// GateMode is one of verify, presence.
	GateMode          string
	LoginPath         string
	PublicPrefixes    []string
	ProtectedPrefixes []string

	LocalSecret       string
	LocalUsername     string
	LocalPasswordHash string
	LocalEmail        string
	LocalTokenTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type EmailConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Secure    bool
	User      string
	Password  string
	Recipient string
}

type UploadConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
	MaxBytes      int64
}

type RateLimitConfig struct {
	ContactPerMinute int
	ContactBurst     int
}

type DefaultsConfig struct {
	Seed         bool
	// SeedFile is a YAML file whose content replaces the built-in defaults.
	SeedFile     string
	Skills       []SkillDefault
	Technologies []string
}

type SkillDefault struct {
	Name  string
	Level int
}

var defaultSkills = []SkillDefault{
	{Name: "React", Level: 90},
	{Name: "Next.js", Level: 85},
	{Name: "JavaScript", Level: 90},
	{Name: "TypeScript", Level: 80},
	{Name: "TailwindCSS", Level: 85},
	{Name: "Node.js", Level: 80},
	{Name: "Firebase", Level: 75},
	{Name: "MongoDB", Level: 70},
}

const defaultTechnologies = "React,Next.js,TypeScript,TailwindCSS,Firebase,Node.js,Express,MongoDB,Git,GitHub,Vercel,Framer Motion,REST API,GraphQL,Responsive Design"

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			StaticDir:          getEnv("STATIC_DIR", ""),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "portfolio-backend"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", "firestore")),
			DSN:         getEnv("DB_DSN", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
			ConnectTO:   getEnvAsDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
			PingTO:      getEnvAsDuration("DB_PING_TIMEOUT", 2*time.Second),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
			WebAPIKey:       getEnv("FIREBASE_WEB_API_KEY", ""),
		},
		Auth: AuthConfig{
			Provider:           strings.ToLower(getEnv("AUTH_PROVIDER", "firebase")),
			AllowedAdminEmails: getEnvAsList("ADMIN_ALLOWED_EMAILS", ""),
			CookieName:         getEnv("AUTH_COOKIE_NAME", "auth_token"),
			CookieTTL:          getEnvAsDuration("AUTH_COOKIE_TTL", time.Hour),
			CheckRevoked:       getEnvAsBool("AUTH_CHECK_REVOKED", true),
			VerifyCacheTTL:     getEnvAsDuration("AUTH_VERIFY_CACHE_TTL", 0),
			GateMode:           strings.ToLower(getEnv("AUTH_GATE_MODE", "verify")),
			LoginPath:          getEnv("AUTH_LOGIN_PATH", "/auth/admin"),
			PublicPrefixes:     getEnvAsList("AUTH_PUBLIC_PREFIXES", "/auth/admin,/admin/login,/api/public"),
			ProtectedPrefixes:  getEnvAsList("AUTH_PROTECTED_PREFIXES", "/admin,/api/admin"),
			LocalSecret:        getEnv("AUTH_LOCAL_SECRET", ""),
			LocalUsername:      getEnv("ADMIN_USERNAME", ""),
			LocalPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
			LocalEmail:         getEnv("ADMIN_EMAIL", ""),
			LocalTokenTTL:      getEnvAsDuration("AUTH_LOCAL_TOKEN_TTL", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Enabled:   getEnvAsBool("EMAIL_ENABLED", false),
			Host:      getEnv("EMAIL_HOST", ""),
			Port:      getEnvAsInt("EMAIL_PORT", 587),
			Secure:    getEnvAsBool("EMAIL_SECURE", false),
			User:      getEnv("EMAIL_USER", ""),
			Password:  getEnv("EMAIL_PASS", ""),
			Recipient: getEnv("EMAIL_RECIPIENT", getEnv("EMAIL_USER", "")),
		},
		Upload: UploadConfig{
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			UsePathStyle:  getEnvAsBool("S3_USE_PATH_STYLE", false),
			PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
			MaxBytes:      int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		RateLimit: RateLimitConfig{
			ContactPerMinute: getEnvAsInt("CONTACT_RATE_PER_MINUTE", 5),
			ContactBurst:     getEnvAsInt("CONTACT_RATE_BURST", 3),
		},
		Defaults: DefaultsConfig{
			Seed:         getEnvAsBool("SEED_DEFAULTS", false),
			SeedFile:     getEnv("SEED_FILE", ""),
			Skills:       loadSkillDefaults(),
			Technologies: getEnvAsList("TECHNOLOGIES", defaultTechnologies),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case "firestore", "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of firestore, postgres, memory (got %q)", c.Store.Driver)
	}

	if len(c.Auth.AllowedAdminEmails) == 0 {
		return fmt.Errorf("ADMIN_ALLOWED_EMAILS is required")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("AUTH_COOKIE_NAME is required")
	}
	if c.Auth.CookieTTL <= 0 {
		return fmt.Errorf("AUTH_COOKIE_TTL must be positive")
	}
	if c.Auth.GateMode != "verify" && c.Auth.GateMode != "presence" {
		return fmt.Errorf("AUTH_GATE_MODE must be verify or presence (got %q)", c.Auth.GateMode)
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		return fmt.Errorf("AUTH_LOGIN_PATH must be an absolute path")
	}

	switch c.Auth.Provider {
	case "firebase":
	case "local":
		if len(c.Auth.LocalSecret) < 32 {
			return fmt.Errorf("AUTH_LOCAL_SECRET must be at least 32 bytes")
		}
		if c.Auth.LocalUsername == "" || c.Auth.LocalPasswordHash == "" {
			return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required when AUTH_PROVIDER=local")
		}
		if c.Auth.LocalEmail == "" {
			return fmt.Errorf("ADMIN_EMAIL is required when AUTH_PROVIDER=local")
		}
		if c.Auth.LocalTokenTTL <= 0 {
			return fmt.Errorf("AUTH_LOCAL_TOKEN_TTL must be positive")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be firebase or local (got %q)", c.Auth.Provider)
	}

	if c.UsesFirebase() && c.Firebase.ProjectID == "" && c.Firebase.CredentialsPath == "" && c.Firebase.CredentialsJSON == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_PATH is required")
	}

	if c.Email.Enabled {
		if c.Email.Host == "" || c.Email.User == "" || c.Email.Password == "" {
			return fmt.Errorf("EMAIL_HOST, EMAIL_USER and EMAIL_PASS are required when EMAIL_ENABLED=true")
		}
		if c.Email.Recipient == "" {
			return fmt.Errorf("EMAIL_RECIPIENT is required when EMAIL_ENABLED=true")
		}
	}

	if c.Upload.Bucket != "" && c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	if c.RateLimit.ContactPerMinute < 0 || c.RateLimit.ContactBurst < 0 {
		return fmt.Errorf("CONTACT_RATE_PER_MINUTE and CONTACT_RATE_BURST must not be negative")
	}

	for _, s := range c.Defaults.Skills {
		if s.Level < 0 || s.Level > 100 {
			return fmt.Errorf("%s must be between 0 and 100", SkillEnvKey(s.Name))
		}
	}

	return nil
}

// UsesFirebase reports whether the Firebase Admin app has to be initialized.
func (c *Config) UsesFirebase() bool {
	return c.Auth.Provider == "firebase" || c.Store.Driver == "firestore"
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// SkillEnvKey returns the variable that overrides the default level of a skill,
// e.g. "Next.js" -> SKILLS_NEXTJS.
func SkillEnvKey(name string) string {
	var b strings.Builder
	b.WriteString("SKILLS_")
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func loadSkillDefaults() []SkillDefault {
	out := make([]SkillDefault, 0, len(defaultSkills))
	for _, s := range defaultSkills {
		out = append(out, SkillDefault{
			Name:  s.Name,
			Level: getEnvAsInt(SkillEnvKey(s.Name), s.Level),
		})
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsDuration accepts Go durations ("30m") or plain seconds ("3600").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
