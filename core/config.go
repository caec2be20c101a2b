package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the configuration document looked up at the project root.
	ConfigFileName = "config.yml"

	// EnvEmailSender overrides courses_email.sender.
	EnvEmailSender = "EMAIL_SENDER"
	// EnvEmailAPIKey overrides courses_email.api_key.
	EnvEmailAPIKey = "EMAIL_API_KEY"

	emailSection = "courses_email"
)

type (
	Config struct {
		Env      string
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName      string
		SecretKey    string
		SiteDomain   string
		SiteProtocol string
		RollbarToken string

		ActivationTimeoutDelta    time.Duration
		PasswordResetTimeoutDelta time.Duration

		Server     ServerConfig
		Database   DatabaseConfig
		Email      EmailConfig
		Pagination PaginationConfig
		Log        LogConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	EmailConfig struct {
		Provider      string // sendgrid | mailgun | smtp | console
		Sender        string
		SenderName    string
		APIKey        string
		MailgunDomain string
		SMTPHost      string
		SMTPPort      int
		SMTPUsername  string
		SMTPPassword  string
		SMTPTLS       string // ssl_tls | starttls | none
		Timeout       time.Duration
	}

	PaginationConfig struct {
		CoursesPerPage int
		Window         int
	}

	LogConfig struct {
		Level string
		File  string
	}
)

// NewConfig loads the configuration from defaults, the optional config.yml document,
// the optional .env file of the current environment and the process environment (in order of precedence).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("courses")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(emailSection+".sender", EnvEmailSender)
	_ = v.BindEnv(emailSection+".api_key", EnvEmailAPIKey)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.Set("env", env)

	wd := v.GetString("workDir")
	if wd == "" {
		wd = Getwd()
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	if doc := LoadConfigFile(filepath.Join(wd, ConfigFileName)); len(doc) > 0 {
		_ = v.MergeConfigMap(doc)
	}

	return &Config{
		Env:      env,
		Build:    v.GetString("build"),
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		WorkDir:  wd,

		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		SiteDomain:   v.GetString("siteDomain"),
		SiteProtocol: v.GetString("siteProtocol"),
		RollbarToken: v.GetString("rollbarToken"),

		ActivationTimeoutDelta:    v.GetDuration("activationTimeoutDelta"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Email: EmailConfig{
			Provider:      v.GetString(emailSection + ".provider"),
			Sender:        v.GetString(emailSection + ".sender"),
			SenderName:    v.GetString(emailSection + ".sender_name"),
			APIKey:        v.GetString(emailSection + ".api_key"),
			MailgunDomain: v.GetString(emailSection + ".mailgun_domain"),
			SMTPHost:      v.GetString(emailSection + ".smtp_host"),
			SMTPPort:      v.GetInt(emailSection + ".smtp_port"),
			SMTPUsername:  v.GetString(emailSection + ".smtp_username"),
			SMTPPassword:  v.GetString(emailSection + ".smtp_password"),
			SMTPTLS:       v.GetString(emailSection + ".smtp_tls"),
			Timeout:       v.GetDuration(emailSection + ".timeout"),
		},
		Pagination: PaginationConfig{
			CoursesPerPage: v.GetInt("pagination.coursesPerPage"),
			Window:         v.GetInt("pagination.window"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("workDir", "")
	v.SetDefault("appName", "Képzés Mindenkinek")
	v.SetDefault("secretKey", "b3k8-r7x)q%d1m=zw&c5n!0t(j#h2u^@s9fe4a6yl")
	v.SetDefault("siteDomain", "localhost:8000")
	v.SetDefault("siteProtocol", "http")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("activationTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 10*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "courses")
	v.SetDefault("database.user", "courses")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault(emailSection+".provider", "console")
	v.SetDefault(emailSection+".sender", "")
	v.SetDefault(emailSection+".sender_name", "Képzés Mindenkinek")
	v.SetDefault(emailSection+".api_key", "")
	v.SetDefault(emailSection+".mailgun_domain", "")
	v.SetDefault(emailSection+".smtp_host", "")
	v.SetDefault(emailSection+".smtp_port", 587)
	v.SetDefault(emailSection+".smtp_username", "")
	v.SetDefault(emailSection+".smtp_password", "")
	v.SetDefault(emailSection+".smtp_tls", "starttls")
	v.SetDefault(emailSection+".timeout", 10*time.Second)

	v.SetDefault("pagination.coursesPerPage", 12)
	v.SetDefault("pagination.window", 5) // should be odd

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// LoadConfigFile returns the content of the YAML configuration document at path.
// A missing, empty or unparseable document yields an empty map.
func LoadConfigFile(path string) map[string]interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]interface{}{}
	}
	doc := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &doc); err != nil || doc == nil {
		return map[string]interface{}{}
	}
	return doc
}

// DefaultFromEmail returns the sender address of outgoing emails.
// The address may be empty; rejecting it is the email provider's concern.
func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Email.SenderName, Address: c.Email.Sender}
}

// SiteURL returns the absolute base URL used in email links.
func (c *Config) SiteURL() string {
	return c.SiteProtocol + "://" + c.SiteDomain
}

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}
