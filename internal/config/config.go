package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/justinabrahms/fogchess/internal/chess"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Duel        DuelConfig        `mapstructure:"duel"`
	Game        GameConfig        `mapstructure:"game"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr is the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DuelConfig struct {
	WhiteAddr string `mapstructure:"white_addr"`
	BlackAddr string `mapstructure:"black_addr"`
}

type GameConfig struct {
	FogRule  string `mapstructure:"fog_rule"`
	StartFEN string `mapstructure:"start_fen"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads config.yaml from the working directory or ./config, then
// applies FOGCHESS_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("FOGCHESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("duel.white_addr", ":8001")
	v.SetDefault("duel.black_addr", ":8002")
	v.SetDefault("game.fog_rule", "lichess")
	v.SetDefault("game.start_fen", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

// Validate checks the values that would otherwise fail late, at game creation.
func (c *Config) Validate() error {
	if _, err := c.FogRule(); err != nil {
		return err
	}
	if c.Game.StartFEN != "" {
		if _, err := chess.ParseFEN(c.Game.StartFEN); err != nil {
			return fmt.Errorf("game.start_fen: %w", err)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// FogRule converts game.fog_rule into a line-of-sight rule.
func (c *Config) FogRule() (chess.LineOfSight, error) {
	rule, err := chess.ParseLineOfSight(c.Game.FogRule)
	if err != nil {
		return chess.LichessLike, fmt.Errorf("game.fog_rule: %w", err)
	}
	return rule, nil
}

// LogLevel parses development.log_level. Debug mode always logs at debug.
func (c *Config) LogLevel() (zerolog.Level, error) {
	if c.Development.Debug {
		return zerolog.DebugLevel, nil
	}
	level, err := zerolog.ParseLevel(c.Development.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("development.log_level: %w", err)
	}
	return level, nil
}

// Defaults returns the configuration used when no file or environment
// overrides are present.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Duel: DuelConfig{
			WhiteAddr: ":8001",
			BlackAddr: ":8002",
		},
		Game: GameConfig{
			FogRule: "lichess",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Development: DevelopmentConfig{
			LogLevel: "info",
		},
	}
}
