package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-Valentine/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Valentine"
	AppID          = "com.github.tartampluch.go-valentine"
	KeyringService = "com.github.tartampluch.go-valentine"
	KeyringUser    = "admin"
	EnvPrefix      = "VALENTINE"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// FilePermPublic represents -rw-r--r--, for exported calendars.
	FilePermPublic fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug      = "debug"
	FlagConfig     = "config"
	FlagWatch      = "watch"
	FlagPassword   = "password"
	FlagLang       = "lang"
	FlagOutput     = "output"
	FlagSteps      = "steps"
	FlagUser       = "user"
	FlagPass       = "pass"
	FlagDescDebug  = "Enable debug logging to stdout"
	FlagDescConfig = "Path to a YAML configuration file"
	FlagDescWatch  = "Refresh the countdown every second until interrupted"
	FlagDescPass   = "New admin password"
	FlagDescLang   = "Language for labels (en, fr)"
	FlagDescOutput = "Write the calendar to this file instead of stdout"
	FlagDescSteps  = "Number of migration steps (0 = all)"
	FlagDescUser   = "HTTP Basic Auth user for remote vCard sources"
	FlagDescVPass  = "HTTP Basic Auth password for remote vCard sources"

	CmdRoot        = "go-valentine"
	CmdServe       = "serve"
	CmdMigrate     = "migrate"
	CmdUp          = "up"
	CmdDown        = "down"
	CmdVersion     = "version"
	CmdAdmin       = "admin"
	CmdSetPassword = "set-password"
	CmdCountdown   = "countdown"
	CmdStats       = "stats"
	CmdImportVCard = "import-vcard"
	CmdExportICS   = "export-ics"

	ShortRoot        = "Backend for the gift-reveal site"
	ShortServe       = "Start the HTTP API"
	ShortMigrate     = "Manage database migrations"
	ShortUp          = "Apply migrations"
	ShortDown        = "Revert migrations"
	ShortVersion     = "Print version information"
	ShortMigVersion  = "Print the current migration version"
	ShortAdmin       = "Admin panel management"
	ShortSetPassword = "Set the admin panel password"
	ShortCountdown   = "Show the countdown to every special date"
	ShortStats       = "Show the time-together statistics"
	ShortImportVCard = "Import birthdays and anniversaries from a vCard file or URL"
	ShortExportICS   = "Export special dates as an iCalendar file"

	MsgVersionOutput   = "%s version %s (%s/%s)\n"
	MsgMigVersion      = "Current migration version: %d (dirty: %t)\n"
	MsgMigNoChange     = "No migrations to run"
	MsgMigDone         = "Migration %s completed successfully\n"
	MsgPasswordSet     = "Admin password updated"
	MsgImported        = "Imported %d special dates\n"
	MsgStatsSince      = "%s\n"
	MsgPasswordPrompt  = "New admin password: "
	MsgStatsClock      = "%s: %02d:%02d:%02d\n"
	MsgCountdownHero   = "%s: %s\n"
	MsgCountdownLine   = "  %-28s %s  %s\n"
	MsgCountdownEmpty  = "No special dates yet"
	ClearScreen        = "\033[H\033[2J"
	DateFormatLongDate = "Monday, January 2, 2006"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyCountdownToday     = "countdown_today"
	TKeyCountdownRemaining = "countdown_remaining" // Requires Days, Hours, Minutes
	TKeyCountdownPast      = "countdown_past"
	TKeyCountdownYearly    = "countdown_yearly"
	TKeyCountdownHero      = "countdown_hero"
	TKeyStatsDays          = "stats_days"
	TKeyStatsClock         = "stats_clock"
	TKeyStatsWeeks         = "stats_weeks"
	TKeyStatsMonths        = "stats_months"
	TKeyDreamsProgress     = "dreams_progress"  // Requires Completed, Total
	TKeyTimelineSummary    = "timeline_summary" // Requires Memories, Years
	TKeyEvtSummary         = "event_summary"    // Requires Title
	TKeyImportBirthday     = "import_birthday"  // Requires Name
	TKeyImportAnniversary  = "import_anniversary"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort            = 8080
	DefaultHost            = "0.0.0.0"
	DefaultLanguage        = "en"
	DefaultLeapYear        = 2000 // Leap year fallback for dates like --02-29
	DefaultTickInterval    = 1 * time.Second
	DefaultRelationship    = "2025-12-04T00:00:00"
	DefaultDBDriver        = DriverSQLite
	DefaultDBDSN           = "file:valentine.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	DefaultPasswordSource  = PasswordSourceStore
	DefaultJWTIssuer       = "go-valentine"
	DefaultJWTTTL          = 12 * time.Hour
	DefaultLoginRate       = 5
	DefaultLoginBurst      = 5
	DefaultLoginWindow     = 1 * time.Minute
	DefaultCORSOrigins     = "*"
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultIcon            = "heart"
	DefaultMemoryCategory  = "milestone"
	BirthdayIcon           = "cake"
	WishMaxY               = 0.85 // Clicks below this line belong to the input bar.
	UIDSalt                = "go-valentine-v1-"

	RecurrenceAnnual  = "annual"
	RecurrenceOneTime = "one-time"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PasswordSourceStore   = "store"
	PasswordSourceKeyring = "keyring"

	// Relationship start layout (local time, no zone).
	DateFormatLocalTime = "2006-01-02T15:04:05"
)

// Site settings keys.
const (
	SettingMusicURL      = "music_url"
	SettingAdminPassword = "admin_password"
)

// Known icons and memory categories. Unknown values fall back to the defaults.
var (
	KnownIcons      = []string{"heart", "calendar", "gift", "cake", "sparkles", "party"}
	KnownCategories = []string{"milestone", "date", "travel", "photo", "music", "gift", "special", "location"}
)

// Spotify embed conversion.
const (
	SpotifyEmbedFormat = "https://open.spotify.com/embed/%s/%s?utm_source=generator&theme=0"
	SpotifyTypeTrack   = "track"
	SpotifyTypeAlbum   = "album"
	SpotifyTypePlay    = "playlist"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Valentine//Countdown//EN"
	ICalCalName   = "Our Special Dates"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "govalentine"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when there are no dates.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	CategoryRecurring = "ANNIVERSARY"
	CategoryOneTime   = "EVENT"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for occurrence anchors
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort        = 1
	MaxPort        = 65535
	MinWrongAnswer = 1

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	FallbackName      = "Unknown"
	FormatBirthday    = "%s's Birthday"
	FormatAnniversary = "Anniversary: %s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	DBPingTimeout       = 10 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB of vCards is plenty
	MaxUploadSize       = "16M"
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSWriteTimeout    = 5 * time.Second
)

// -----------------------------------------------------------------------------
// HTTP Routes, Params, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteHealth       = "/health"
	RouteMetrics      = "/metrics"
	RouteCalendar     = "/calendar.ics"
	RouteWSCountdown  = "/ws/countdown"
	RouteAPI          = "/api"
	RoutePhotos       = "/photos"
	RouteReasons      = "/reasons"
	RouteQuiz         = "/quiz"
	RouteQuizAnswer   = "/quiz/:id/answer"
	RouteQuizResult   = "/quiz/result"
	RouteDreams       = "/dreams"
	RouteDreamToggle  = "/dreams/:id/toggle"
	RouteWishes       = "/wishes"
	RouteLetter       = "/letter"
	RouteMusic        = "/music"
	RouteTimeline     = "/timeline"
	RouteCountdown    = "/countdown"
	RouteStats        = "/stats"
	RouteAdmin        = "/admin"
	RouteLogin        = "/login"
	RouteSpecialDates = "/special-dates"
	RouteMemories     = "/memories"
	RouteImportVCard  = "/import/vcard"
	RouteByID         = "/:id"

	ParamID   = "id"
	ParamLang = "lang"

	ContextKeyAdmin = "admin_subject"
	BearerPrefix    = "Bearer "

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderAuthorization   = "Authorization"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeVCard           = "text/vcard"
	MimeXVCard          = "text/x-vcard"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	AllowedMethods      = "GET, HEAD"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace      = "valentine"
	MetricRequestsTotal   = "http_requests_total"
	MetricRequestDuration = "http_request_duration_seconds"
	MetricStreamsActive   = "countdown_streams_active"
	MetricLoginFailures   = "admin_login_failures_total"
	MetricLabelMethod     = "method"
	MetricLabelPath       = "path"
	MetricLabelStatus     = "status"

	HelpRequestsTotal   = "Total number of HTTP requests"
	HelpRequestDuration = "HTTP request duration in seconds"
	HelpStreamsActive   = "Open live countdown WebSocket connections"
	HelpLoginFailures   = "Rejected admin login attempts"
)

// -----------------------------------------------------------------------------
// Security Headers
// -----------------------------------------------------------------------------

const (
	SecureXSSProtection = "1; mode=block"
	SecureFrameOptions  = "DENY"
	SecureCSP           = "default-src 'self'"
	SecureHSTSMaxAge    = 31536000
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidAnchor  = "invalid occurrence anchor"
	ErrAnchorNoYear   = "a one-time date needs a year"
	ErrDateParse      = "unable to parse date"
	ErrTickerRunning  = "ticker already running"
	ErrNotFound       = "not found"
	ErrValidation     = "validation failed"
	ErrFieldRequired  = "field is required"
	ErrWrongAnswers   = "add at least one wrong answer"
	ErrWishPosition   = "wish position is outside the sky"
	ErrUnauthorized   = "invalid credentials"
	ErrTokenInvalid   = "invalid token"
	ErrPasswordUnset  = "admin password is not set"
	ErrPasswordEmpty  = "password must not be empty"
	ErrPasswordSource = "unsupported password source"
	ErrJWTSecret      = "jwt secret is required"
	ErrDBDriver       = "unsupported database driver"
	ErrDBOpen         = "failed to open database connection"
	ErrDBPing         = "failed to ping database"
	ErrDBQuery        = "database query failed"
	ErrDBTx           = "database transaction failed"
	ErrMigrateInit    = "failed to create migration instance"
	ErrMigrate        = "migration failed"
	ErrConfigRead     = "failed to read configuration file"
	ErrConfigDecode   = "failed to decode configuration"
	ErrConfigInvalid  = "invalid configuration"
	ErrRelationship   = "invalid relationship start"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRange      = "server port must be between 1 and 65535"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrWSUpgrade      = "websocket upgrade failed"
	ErrCalendarRender = "failed to render calendar"
	ErrRequestFailed  = "request failed"
	ErrInvalidRequest = "invalid request format"
	ErrKeyring        = "keyring access failed"
	ErrRateLimited    = "rate limit exceeded"
	ErrInternal       = "internal server error"
	ErrImportSource   = "vCard imports need an http(s) URL or a vCard body"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgStatusOK     = "ok"
	HTTPMsgStatusDown   = "unavailable"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgRequest        = "HTTP request"
	MsgRequestFailed  = "HTTP request failed"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgImportDone     = "vCard import finished"
	MsgICSRendered    = "Calendar generation successful"
	MsgDateToday      = "Special date found today"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchBody      = "vCards downloading"
	MsgTickerStopped  = "Ticker stopped by tick error"
	MsgStreamOpen     = "Countdown stream opened"
	MsgStreamClosed   = "Countdown stream closed"
	MsgLoginOK        = "Admin logged in"
	MsgLoginFailed    = "Admin login rejected"
	MsgContentAdded   = "Content added"
	MsgContentDeleted = "Content deleted"
	MsgContentUpdated = "Content updated"
	MsgDBOpened       = "Database connection established"
	MsgMigrated       = "Database schema up to date"
	MsgDotenvMissing  = "No .env file loaded"
	MsgJWTEphemeral   = "No jwt.secret configured, using a random key; sessions end on restart"
	MsgExported       = "Calendar exported"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyDriver    = "driver"
	LogKeyKind      = "kind"
	LogKeyID        = "id"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyMethod    = "method"
	LogKeyURI       = "uri"
	LogKeyRemoteIP  = "remote_ip"
	LogKeyRequestID = "request_id"
	LogKeyVersion   = "version"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "dates_found"
	LogKeyEvents    = "events"
	LogKeyToday     = "dates_today"
	LogKeyUserAgent = "user_agent"

	// Startup Info Keys
	LogKeyBuild = "build"
	LogKeyApp   = "app"
	LogKeyGoVer = "go_version"
	LogKeyEnv   = "env"
	LogKeyOS    = "os"
	LogKeyArch  = "arch"
	LogKeyPID   = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompCLI      = "cli"
	CompTicker   = "ticker"
	CompServer   = "server"
	CompStream   = "stream"
	CompFetcher  = "fetcher"
	CompCalendar = "calendar"
	CompStore    = "store"
	CompContent  = "content"
	CompAuth     = "auth"
	CompI18n     = "i18n"
	CompConfig   = "config"
)
