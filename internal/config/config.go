package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Paging   PagingConfig   `mapstructure:"paging"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Source   SourceConfig   `mapstructure:"source"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Open     OpenConfig     `mapstructure:"open"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type PagingConfig struct {
	PageSize        int           `mapstructure:"page_size"`
	ScrollThreshold int           `mapstructure:"scroll_threshold"`
	Debounce        time.Duration `mapstructure:"debounce"`
	CachePrefix     string        `mapstructure:"cache_prefix"`
	// PostFilter narrows loaded contacts locally instead of reloading.
	PostFilter bool `mapstructure:"post_filter"`
}

// CacheConfig selects where paging snapshots are kept. Backend is one of
// none, memory, bigcache, bolt or redis; Codec one of json, msgpack or cbor.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Codec    string        `mapstructure:"codec"`
	Path     string        `mapstructure:"path"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxCost  int64         `mapstructure:"max_cost"`
	Redis    RedisConfig   `mapstructure:"redis"`
	Shards   int           `mapstructure:"shards"`
	MaxBytes int           `mapstructure:"max_mb"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SourceConfig picks the backend addressing: offset, cursor or server.
type SourceConfig struct {
	Mode        string        `mapstructure:"mode"`
	Endpoint    string        `mapstructure:"endpoint"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	MaxLimit int    `mapstructure:"max_limit"`
}

type LogConfig struct {
	Backend string `mapstructure:"backend"`
	Level   string `mapstructure:"level"`
	Path    string `mapstructure:"path"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

// OpenConfig overrides the applications that handle mailto: and tel: links.
// Empty values fall back to the platform defaults.
type OpenConfig struct {
	Opener string   `mapstructure:"opener"`
	Mail   []string `mapstructure:"mail"`
	Phone  []string `mapstructure:"phone"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Search  string `mapstructure:"search"`
	Refresh string `mapstructure:"refresh"`
	Back    string `mapstructure:"back"`
	Help    string `mapstructure:"help"`
	Mail    string `mapstructure:"mail"`
	Call    string `mapstructure:"call"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".lazyload")

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "contacts.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "index.bleve"),
		},
		Paging: PagingConfig{
			PageSize:        10,
			ScrollThreshold: 20,
			Debounce:        500 * time.Millisecond,
			CachePrefix:     "contacts:",
		},
		Cache: CacheConfig{
			Backend:  "memory",
			Codec:    "msgpack",
			Path:     filepath.Join(dataDir, "cache.db"),
			TTL:      10 * time.Minute,
			MaxCost:  64 << 20,
			Shards:   64,
			MaxBytes: 64,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Source: SourceConfig{
			Mode:        "offset",
			Endpoint:    "http://localhost:8080",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "lazyload/1.0 (https://github.com/pders01/lazyload)",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			MaxLimit: 200,
		},
		Log: LogConfig{
			Backend: "debuglog",
			Level:   "info",
			Path:    filepath.Join(dataDir, "debug.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 40,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:    "q",
				Search:  "s",
				Refresh: "r",
				Back:    "esc",
				Help:    "?",
				Mail:    "m",
				Call:    "p",
			},
		},
		Open: OpenConfig{
			Mail:  []string{},
			Phone: []string{},
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, "", reflect.ValueOf(*defaultConfig()))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "lazyload")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LAZYLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf field under its dotted mapstructure key
// so a file that sets one key of a section keeps the defaults of the others.
func setDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		field := rv.Field(i)
		if field.Kind() == reflect.Struct {
			setDefaults(v, key, field)
			continue
		}
		v.SetDefault(key, field.Interface())
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, section := range toMap(reflect.ValueOf(*config)) {
		v.Set(key, section)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// toMap mirrors a config struct as nested maps keyed by mapstructure tags.
// Durations are written as strings to keep the TOML readable.
func toMap(rv reflect.Value) map[string]interface{} {
	out := make(map[string]interface{})
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		field := rv.Field(i)
		switch {
		case field.Type() == reflect.TypeOf(time.Duration(0)):
			out[tag] = field.Interface().(time.Duration).String()
		case field.Kind() == reflect.Struct:
			out[tag] = toMap(field)
		default:
			out[tag] = field.Interface()
		}
	}
	return out
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
