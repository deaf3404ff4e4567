package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type BookingConfig struct {
	// Minutes an unpaid reservation holds its dates before it becomes
	// eligible for expiration.
	PaymentWindowMinutes int
	// Hours after creation during which a renter cancellation refunds in
	// full.
	RefundWindowHours int
	// Cron spec (with seconds) for the expiration sweep.
	SweepSpec string
}

func (b BookingConfig) PaymentWindow() time.Duration {
	return time.Duration(b.PaymentWindowMinutes) * time.Minute
}

func (b BookingConfig) RefundWindow() time.Duration {
	return time.Duration(b.RefundWindowHours) * time.Hour
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PAYMENT_WINDOW_MINUTES", 15)
	viper.SetDefault("REFUND_WINDOW_HOURS", 24)
	viper.SetDefault("SWEEP_SPEC", "0 * * * * *")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Booking: BookingConfig{
			PaymentWindowMinutes: viper.GetInt("PAYMENT_WINDOW_MINUTES"),
			RefundWindowHours:    viper.GetInt("REFUND_WINDOW_HOURS"),
			SweepSpec:            viper.GetString("SWEEP_SPEC"),
		},
	}

	return config, nil
}
