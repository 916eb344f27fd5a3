package config

import (
	"log"

	"github.com/spf13/viper"
	"github.com/stellar/go/network"
)

var config *viper.Viper

// Init starts viper with the default configuration file and merges the
// environment-specific one over it.
func Init(env string) {
	config = viper.New()
	config.SetConfigType("yaml")
	config.SetConfigName("default")
	config.AddConfigPath("config/")
	config.SetDefault("network.passphrase", network.TestNetworkPassphrase)
	config.SetDefault("network.base_fee", 100)
	config.SetDefault("server.port", "8080")
	config.SetDefault("log.level", "info")
	if err := config.ReadInConfig(); err != nil {
		log.Fatal("error on parsing default configuration file")
	}

	// Map environment names to config files
	configName := env
	switch env {
	case "development":
		configName = "testnet"
	case "production":
		configName = "mainnet"
	// Keep other environments as-is (e.g., "test")
	}

	envConfig := viper.New()
	envConfig.SetConfigType("yaml")
	envConfig.AddConfigPath("config/")
	envConfig.SetConfigName(configName)
	if err := envConfig.ReadInConfig(); err != nil {
		log.Fatalf("error on parsing %s configuration file: %v", configName, err)
	}

	config.MergeConfigMap(envConfig.AllSettings())
}

func GetConfig() *viper.Viper {
	return config
}

func NetworkPassphrase() string {
	return config.GetString("network.passphrase")
}

func BaseFee() uint32 {
	return config.GetUint32("network.base_fee")
}

func DatabaseURL() string {
	return config.GetString("database.url")
}

func Port() string {
	return config.GetString("server.port")
}

func LogLevel() string {
	return config.GetString("log.level")
}
