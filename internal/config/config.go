package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv     string `mapstructure:"app_env"`
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`

	Auth struct {
		JWTSecret         string        `mapstructure:"jwt_secret"`
		TokenTTL          time.Duration `mapstructure:"token_ttl"`
		AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	} `mapstructure:"auth"`

	Sheets struct {
		Enable         bool   `mapstructure:"enable"`
		CredentialPath string `mapstructure:"credential_path"`
		SpreadsheetID  string `mapstructure:"spreadsheet_id"`
		SheetName      string `mapstructure:"sheet_name"`
	} `mapstructure:"sheets"`
}

// Load reads configuration from an optional config.yaml in the working
// directory and from LICENSE_API_* environment variables, env taking
// precedence. Missing values fall back to defaults suitable for local runs.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app_env", "development")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("sheets.enable", false)
	v.SetDefault("sheets.credential_path", "credentials.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet_name", "Licenses")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LICENSE_API")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
