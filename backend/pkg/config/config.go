package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"unigraph/backend/internal/constants"
	apperrors "unigraph/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port    string
	Env     string
	Debug   bool
	LogFile string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Build run
	Execute           bool
	Output            string
	EnsureConstraints bool

	// Inputs; an empty path disables that source
	FacultyPath string
	CoursePath  string
	ContactPath string
	GeneralPath string

	// Domain defaults
	UniversityName    string
	UniversityWebsite string
	CountryCode       string
	// CoursePrefixes maps a course code prefix (e.g. "IT") to a department name
	CoursePrefixes map[string]string
}

// flag name -> viper key
var flagKeys = map[string]string{
	"uri":                "neo4j.uri",
	"username":           "neo4j.user",
	"password":           "neo4j.password",
	"database":           "neo4j.database",
	"execute":            "build.execute",
	"output":             "build.output",
	"ensure-constraints": "build.ensure_constraints",
	"faculty":            "input.faculty",
	"course":             "input.course",
	"contact":            "input.contact",
	"general":            "input.general",
	"debug":              "log.debug",
	"log-file":           "log.file",
	"port":               "port",
}

// viper key -> environment variable
var envKeys = map[string]string{
	"env":                      "ENV",
	"port":                     "PORT",
	"log.debug":                "KG_DEBUG",
	"log.file":                 "KG_LOG_FILE",
	"neo4j.uri":                "NEO4J_URI",
	"neo4j.user":               "NEO4J_USER",
	"neo4j.password":           "NEO4J_PASSWORD",
	"neo4j.database":           "NEO4J_DATABASE",
	"build.execute":            "KG_EXECUTE",
	"build.output":             "KG_OUTPUT",
	"build.ensure_constraints": "KG_ENSURE_CONSTRAINTS",
	"input.faculty":            "KG_FACULTY_FILE",
	"input.course":             "KG_COURSE_FILE",
	"input.contact":            "KG_CONTACT_FILE",
	"input.general":            "KG_GENERAL_FILE",
	"university.name":          "KG_UNIVERSITY_NAME",
	"university.website":       "KG_UNIVERSITY_WEBSITE",
	"university.country_code":  "KG_COUNTRY_CODE",
}

// Load reads configuration from .env, an optional config file, environment
// variables and, when given, command-line flags (highest precedence).
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewInputUnreadable(configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		Env:               v.GetString("env"),
		Debug:             v.GetBool("log.debug"),
		LogFile:           v.GetString("log.file"),
		Neo4jURI:          v.GetString("neo4j.uri"),
		Neo4jUser:         v.GetString("neo4j.user"),
		Neo4jPassword:     v.GetString("neo4j.password"),
		Neo4jDatabase:     v.GetString("neo4j.database"),
		Execute:           v.GetBool("build.execute"),
		Output:            v.GetString("build.output"),
		EnsureConstraints: v.GetBool("build.ensure_constraints"),
		FacultyPath:       v.GetString("input.faculty"),
		CoursePath:        v.GetString("input.course"),
		ContactPath:       v.GetString("input.contact"),
		GeneralPath:       v.GetString("input.general"),
		UniversityName:    strings.TrimSpace(v.GetString("university.name")),
		UniversityWebsite: strings.TrimSpace(v.GetString("university.website")),
		CountryCode:       strings.TrimPrefix(v.GetString("university.country_code"), "+"),
		CoursePrefixes:    normalizePrefixes(v.GetStringMapString("course_prefixes")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")

	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("build.execute", false)
	v.SetDefault("build.output", "")
	v.SetDefault("build.ensure_constraints", false)

	v.SetDefault("input.faculty", constants.DefaultFacultyFile)
	v.SetDefault("input.course", constants.DefaultCourseFile)
	v.SetDefault("input.contact", constants.DefaultContactFile)
	v.SetDefault("input.general", constants.DefaultGeneralFile)

	v.SetDefault("university.name", constants.DefaultUniversityName)
	v.SetDefault("university.website", constants.DefaultUniversityWebsite)
	v.SetDefault("university.country_code", constants.DefaultCountryCode)
	v.SetDefault("course_prefixes", map[string]string{})
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.UniversityName == "" {
		return apperrors.NewConfigMissingRequired("university.name")
	}
	if c.CountryCode != "" && strings.Trim(c.CountryCode, "0123456789") != "" {
		return apperrors.NewConfigValidationFailed("university.country_code", "must contain digits only")
	}
	if c.FacultyPath == "" && c.CoursePath == "" && c.ContactPath == "" && c.GeneralPath == "" {
		return apperrors.NewConfigValidationFailed("input", "every input file is disabled")
	}
	if c.Execute {
		// The store credentials are only needed when writing
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
		if c.Output != "" {
			return apperrors.NewConfigValidationFailed("output", "cannot be combined with execute")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func normalizePrefixes(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for prefix, dept := range raw {
		prefix = strings.ToUpper(strings.TrimSpace(prefix))
		dept = strings.TrimSpace(dept)
		if prefix != "" && dept != "" {
			out[prefix] = dept
		}
	}
	return out
}
