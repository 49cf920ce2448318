package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string

	AppName          string
	SecretKey        string
	FrontendBaseURL  string
	WorkDir          string
	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string

	Server struct {
		Host               string
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	OTP struct {
		TTL    time.Duration
		Digits int
	}

	Database struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Stripe struct {
		SecretKey     string
		WebhookSecret string
	}

	AWS struct {
		Region string
		Bucket string
	}
}

// DatabaseAddress returns the database "host:port" pair.
func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables, in increasing precedence.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CourCompanion")
	v.SetDefault("secretKey", "t-3b@)pwik4ce&vhm3^#od(72+ns9!fa$ym5+x8qz%1ujl_")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 1*time.Hour)

	v.SetDefault("otpTTL", 5*time.Minute)
	v.SetDefault("otpDigits", 6)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "courcompanion")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)

	v.SetDefault("stripeSecretKey", "")
	v.SetDefault("stripeWebhookSecret", "")

	v.SetDefault("awsRegion", "")
	v.SetDefault("awsBucket", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		WorkDir:         wd,
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
	}

	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.DebugAddr = v.GetString("serverDebugAddr")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")

	conf.OTP.TTL = v.GetDuration("otpTTL")
	conf.OTP.Digits = v.GetInt("otpDigits")

	conf.Database.Engine = v.GetString("dbEngine")
	conf.Database.Name = v.GetString("dbName")
	conf.Database.Host = v.GetString("dbHost")
	conf.Database.Port = v.GetString("dbPort")
	conf.Database.User = v.GetString("dbUser")
	conf.Database.Password = v.GetString("dbPassword")
	conf.Database.AdminUser = v.GetString("dbAdminUser")
	conf.Database.AdminPassword = v.GetString("dbAdminPassword")
	conf.Database.DisableTLS = v.GetBool("dbDisableTLS")

	conf.Redis.Addr = v.GetString("redisAddr")
	conf.Redis.Password = v.GetString("redisPassword")
	conf.Redis.DB = v.GetInt("redisDB")

	conf.Stripe.SecretKey = v.GetString("stripeSecretKey")
	conf.Stripe.WebhookSecret = v.GetString("stripeWebhookSecret")

	conf.AWS.Region = v.GetString("awsRegion")
	conf.AWS.Bucket = v.GetString("awsBucket")

	return conf
}

// Check validates settings a running deployment cannot do without.
// A failure here is fatal at startup; it is never a per-request error.
func (c *Config) Check() error {
	if c.Debug || c.TestMode {
		return nil
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return NewShutdownError("secretKey is not set")
	}
	if c.SendgridApiKey == "" {
		return NewShutdownError("sendgridApiKey is not set")
	}
	return nil
}

// Getwd tries to find the project root.
// go-test changes the working directory to the test package being run during tests;
// walk up until go.mod is found.
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // fall back to the actual working directory
		}
		currDir = newDir
	}
}
