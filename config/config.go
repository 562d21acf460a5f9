package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr  string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	UploadDir   string // Directory where uploaded audio files are staged and kept
	PublicDir   string // Root directory for static assets
	TemplateDir string // Directory holding the HTML templates
	LogLevel    string
	LogPath     string // Empty means console logging only
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables and defaults.")
	}

	publicDir := getEnv("PUBLIC_DIR", "public")

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":7000"),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBUser:      getEnv("DB_USER", "root"),
		DBPassword:  os.Getenv("DB_PASSWORD"), // no hardcoded default for credentials
		DBName:      getEnv("DB_NAME", "songshelf"),
		UploadDir:   getEnv("UPLOAD_DIR", filepath.Join(publicDir, "uploads")),
		PublicDir:   publicDir,
		TemplateDir: getEnv("TEMPLATE_DIR", filepath.Join("web", "templates")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPath:     getEnv("LOG_PATH", ""),
	}
}
