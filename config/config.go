package config

import (
	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion          string `mapstructure:"GENERAL_VERSION"`
	Environment             string `mapstructure:"ENVIRONMENT"`
	ServerPort              int    `mapstructure:"SERVER_PORT"`
	DatabaseHost            string `mapstructure:"DB_HOST"`
	DatabasePort            int    `mapstructure:"DB_PORT"`
	DatabaseName            string `mapstructure:"DB_NAME"`
	DatabaseUser            string `mapstructure:"DB_USER"`
	DatabasePassword        string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress    string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort       int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset      int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins        string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	SchedulerEnabled        bool   `mapstructure:"SCHEDULER_ENABLED"`
	ServiceExpiryGraceHours int    `mapstructure:"SERVICE_EXPIRY_GRACE_HOURS"`
	NotificationBufferSize  int    `mapstructure:"NOTIFICATION_BUFFER_SIZE"`
	SendGridAPIKey          string `mapstructure:"SENDGRID_API_KEY"`
	EmailFromAddress        string `mapstructure:"EMAIL_FROM_ADDRESS"`
	EmailFromName           string `mapstructure:"EMAIL_FROM_NAME"`
}

const (
	DefaultServiceExpiryGraceHours = 24
	DefaultNotificationBufferSize  = 256
)

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS", "JWT_SECRET",
		"SCHEDULER_ENABLED", "SERVICE_EXPIRY_GRACE_HOURS", "NOTIFICATION_BUFFER_SIZE",
		"SENDGRID_API_KEY", "EMAIL_FROM_ADDRESS", "EMAIL_FROM_NAME",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("SERVICE_EXPIRY_GRACE_HOURS", DefaultServiceExpiryGraceHours)
	viper.SetDefault("NOTIFICATION_BUFFER_SIZE", DefaultNotificationBufferSize)
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("EMAIL_FROM_NAME", "CleanHub")

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET is required")
	}

	if config.Environment == "production" && len(config.JWTSecret) < 32 {
		return log.ErrMsg("Fatal error: JWT_SECRET must be at least 32 characters in production")
	}

	if config.ServiceExpiryGraceHours < 0 {
		return log.Error(
			"Fatal error: invalid service expiry grace hours",
			"hours", config.ServiceExpiryGraceHours,
		)
	}

	if config.SendGridAPIKey != "" && config.EmailFromAddress == "" {
		return log.ErrMsg("Fatal error: EMAIL_FROM_ADDRESS required when SENDGRID_API_KEY is set")
	}

	ConfigInstance = config
	return nil
}
