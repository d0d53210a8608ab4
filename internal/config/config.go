/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the clearinghouse-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                 string `mapstructure:"SERVER_PORT"`
	DatabaseURL                string `mapstructure:"DATABASE_URL"`
	RabbitMQURL                string `mapstructure:"RABBITMQ_URL"`
	OutcomeEventExchange       string `mapstructure:"OUTCOME_EVENT_EXCHANGE"`
	RedisURL                   string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix       string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	MerchantRateLimitPerMinute int    `mapstructure:"MERCHANT_RATE_LIMIT_PER_MINUTE"`
	ChaseAPIURL                string `mapstructure:"CHASE_API_URL"`
	CitibankAPIURL             string `mapstructure:"CITIBANK_API_URL"`
	ClearinghouseAcctNum       string `mapstructure:"CLEARINGHOUSE_ACCT_NUM"`
	ClearinghouseToken         string `mapstructure:"CLEARINGHOUSE_TOKEN"`
	OpsJWTSecret               string `mapstructure:"OPS_JWT_SECRET"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values. The provider endpoints default to the deployed
	// settlement lambdas; deployments override them per environment.
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("OUTCOME_EVENT_EXCHANGE", "clearinghouse.events")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "clearinghouse:rate_limit")
	viper.SetDefault("MERCHANT_RATE_LIMIT_PER_MINUTE", 0)
	viper.SetDefault("CHASE_API_URL", "https://l4biqzlvcftgrvndcqbixb64x40bzkxj.lambda-url.us-west-1.on.aws")
	viper.SetDefault("CITIBANK_API_URL", "https://3p6ek2m7p4mrlraaxnw7qc7rry0hxvwf.lambda-url.us-west-1.on.aws/")
	viper.SetDefault("CLEARINGHOUSE_ACCT_NUM", "Tucker Morin")
	viper.SetDefault("CLEARINGHOUSE_TOKEN", "521679")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("OUTCOME_EVENT_EXCHANGE")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("MERCHANT_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("CHASE_API_URL")
	_ = viper.BindEnv("CITIBANK_API_URL")
	_ = viper.BindEnv("CLEARINGHOUSE_ACCT_NUM")
	_ = viper.BindEnv("CLEARINGHOUSE_TOKEN")
	_ = viper.BindEnv("OPS_JWT_SECRET")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.OpsJWTSecret = strings.TrimSpace(config.OpsJWTSecret)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "clearinghouse:rate_limit"
	}
	if config.MerchantRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative merchant rate limit configured; disabling\" limit=%d", config.MerchantRateLimitPerMinute)
		config.MerchantRateLimitPerMinute = 0
	}

	return
}
