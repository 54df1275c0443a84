package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration of the application.
type Settings struct {
	Server       ServerSettings   `mapstructure:"server"`
	Database     DatabaseSettings `mapstructure:"database"`
	Admin        AdminSettings    `mapstructure:"admin"`
	JWT          JWTSettings      `mapstructure:"jwt"`
	Relationship RelationSettings `mapstructure:"relationship"`
	Calendar     CalendarSettings `mapstructure:"calendar"`
	Locale       string           `mapstructure:"locale"`
	Security     SecuritySettings `mapstructure:"security"`
	Metrics      MetricsSettings  `mapstructure:"metrics"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the host:port pair the server binds to.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s%s%d", s.Host, AddrSeparator, s.Port)
}

// DatabaseSettings selects the SQL driver and tunes the pool.
type DatabaseSettings struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AdminSettings struct {
	PasswordSource string `mapstructure:"password_source"`
}

type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RelationSettings holds the "together since" instant, local time without zone.
type RelationSettings struct {
	Start string `mapstructure:"start"`
}

// StartTime parses Start in loc.
func (r RelationSettings) StartTime(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateFormatLocalTime, r.Start, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ErrRelationship, err)
	}
	return t, nil
}

type CalendarSettings struct {
	// ReminderTrigger is an RFC 5545 duration such as "-PT9H". Empty disables alarms.
	ReminderTrigger string        `mapstructure:"reminder_trigger"`
	Refresh         time.Duration `mapstructure:"refresh"`
}

type SecuritySettings struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	LoginRate          float64       `mapstructure:"login_rate"`
	LoginBurst         int           `mapstructure:"login_burst"`
	LoginWindow        time.Duration `mapstructure:"login_window"`
}

type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads settings from defaults, an optional YAML file, a .env file and
// VALENTINE_* environment variables, in increasing precedence.
func Load(path string) (*Settings, error) {
	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil {
		slog.Debug(MsgDotenvMissing, LogKeyComponent, CompConfig, LogKeyError, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigInvalid, err)
	}
	return &s, nil
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	_ = v.Unmarshal(&s)
	return &s
}

// Validate checks the settings that cannot be repaired by a default.
func (s *Settings) Validate() error {
	var errs []error
	if s.Server.Port < MinPort || s.Server.Port > MaxPort {
		errs = append(errs, errors.New(ErrPortRange))
	}
	switch s.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrDBDriver, s.Database.Driver))
	}
	switch s.Admin.PasswordSource {
	case PasswordSourceStore, PasswordSourceKeyring:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrPasswordSource, s.Admin.PasswordSource))
	}
	if _, err := s.Relationship.StartTime(time.UTC); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", ServerReadTimeout)
	v.SetDefault("server.write_timeout", ServerWriteTimeout)
	v.SetDefault("server.idle_timeout", ServerIdleTimeout)

	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.dsn", DefaultDBDSN)
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultConnMaxLifetime)

	v.SetDefault("admin.password_source", DefaultPasswordSource)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", DefaultJWTIssuer)
	v.SetDefault("jwt.ttl", DefaultJWTTTL)

	v.SetDefault("relationship.start", DefaultRelationship)

	v.SetDefault("calendar.reminder_trigger", "")
	v.SetDefault("calendar.refresh", DefaultICalRefresh)

	v.SetDefault("locale", DefaultLanguage)

	v.SetDefault("security.cors_allowed_origins", DefaultCORSOrigins)
	v.SetDefault("security.login_rate", DefaultLoginRate)
	v.SetDefault("security.login_burst", DefaultLoginBurst)
	v.SetDefault("security.login_window", DefaultLoginWindow)

	v.SetDefault("metrics.enabled", true)
}
