package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "urlkit.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "urlkit.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultCertDir is where dev certificates are cached.
	DefaultCertDir = ".urlkit/certs"

	// DefaultStorageDir is the root of the file storage backend.
	DefaultStorageDir = "data"

	// DefaultMaxHistory bounds the entries kept per WebSocket session.
	DefaultMaxHistory = 100
)

// Storage backends.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Environment variables that override the file.
const (
	EnvPort = "URLKIT_PORT"
	EnvHost = "URLKIT_HOST"
)

// candidates are the file names Load looks for, in order.
var candidates = []string{ConfigFileName, YAMLConfigFileName, "urlkit.yml"}

// Config represents the complete urlkit configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Codec contains query codec defaults.
	Codec CodecConfig `json:"codec" yaml:"codec"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage contains blob storage configuration for batch jobs.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CodecConfig contains codec defaults.
type CodecConfig struct {
	// Delimiter separates key/value pairs (default: "&").
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// ListSeparator splits decoded values into lists. Empty disables lists.
	ListSeparator string `json:"listSeparator,omitempty" yaml:"listSeparator,omitempty"`

	// AllowOnlyPathname makes IsURL accept "/path" style inputs.
	AllowOnlyPathname bool `json:"allowOnlyPathname" yaml:"allowOnlyPathname"`

	// IncludeLocalhostDomain makes IsIPAddress accept "localhost" hosts.
	IncludeLocalhostDomain bool `json:"includeLocalhostDomain" yaml:"includeLocalhostDomain"`
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// HTTPS serves TLS with a self-signed dev certificate.
	HTTPS bool `json:"https,omitempty" yaml:"https,omitempty"`

	// CertDir caches the dev certificate.
	CertDir string `json:"certDir,omitempty" yaml:"certDir,omitempty"`

	// Metrics exposes /metrics.
	Metrics bool `json:"metrics" yaml:"metrics"`

	// Tracing enables the OpenTelemetry middleware.
	Tracing bool `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Debounce delays history commits of WebSocket sessions (e.g. "250ms").
	Debounce string `json:"debounce,omitempty" yaml:"debounce,omitempty"`

	// MaxHistory bounds the entries kept per WebSocket session.
	MaxHistory int `json:"maxHistory,omitempty" yaml:"maxHistory,omitempty"`
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	// Backend is "file" or "s3".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the root directory of the file backend.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is prepended to every S3 key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Codec: CodecConfig{
			Delimiter:              urlcodec.DefaultDelimiter,
			AllowOnlyPathname:      true,
			IncludeLocalhostDomain: true,
		},
		Server: ServerConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			CertDir:    DefaultCertDir,
			Metrics:    true,
			Debounce:   "0s",
			MaxHistory: DefaultMaxHistory,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     DefaultStorageDir,
		},
	}
}

// Load reads configuration from the specified directory, trying
// urlkit.json, urlkit.yaml and urlkit.yml in that order, then applies
// environment overrides.
func Load(dir string) (*Config, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			if err != nil {
				return nil, err
			}
			if err := cfg.ApplyEnv(os.Getenv); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}
	return nil, errors.New("U020").
		WithDetail("No urlkit.json or urlkit.yaml found in " + dir).
		WithSuggestion("Run 'urlkit init' or create urlkit.json manually")
}

// LoadOrDefault is Load, falling back to defaults (with environment
// overrides) when no config file exists.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.CodeOf(err) != "U020" {
		return cfg, err
	}
	cfg = New()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("U020").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("U021").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		ue := errors.New("U021").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatName(path))
		if line, col, ok := syntaxPosition(data, err); ok {
			ue = ue.WithLocation(path, line, col)
		}
		return nil, ue
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the server address from URLKIT_HOST and URLKIT_PORT.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if host := getenv(EnvHost); host != "" {
		c.Server.Host = host
	}
	if port := getenv(EnvPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return errors.New("U022").
				WithDetail(EnvPort + " must be a number, got " + strconv.Quote(port))
		}
		c.Server.Port = n
	}
	return c.Validate()
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension says so.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("U021").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("U021").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Codec.Delimiter == "" {
		c.Codec.Delimiter = urlcodec.DefaultDelimiter
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.CertDir == "" {
		c.Server.CertDir = DefaultCertDir
	}
	if c.Server.Debounce == "" {
		c.Server.Debounce = "0s"
	}
	if c.Server.MaxHistory == 0 {
		c.Server.MaxHistory = DefaultMaxHistory
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultStorageDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("U022").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Codec.Delimiter == "" {
		return errors.New("U022").
			WithDetail("codec.delimiter must not be empty")
	}
	if c.Codec.ListSeparator != "" && c.Codec.ListSeparator == c.Codec.Delimiter {
		return errors.New("U022").
			WithDetail("codec.listSeparator must differ from codec.delimiter")
	}
	if _, err := c.DebounceDuration(); err != nil {
		return errors.New("U022").
			WithDetail("server.debounce: " + err.Error()).
			WithSuggestion(`Use a Go duration such as "250ms"`)
	}
	if c.Server.MaxHistory < 0 {
		return errors.New("U022").
			WithDetail("server.maxHistory must not be negative")
	}
	switch c.Storage.Backend {
	case "", BackendFile:
	case BackendS3:
		if c.Storage.Bucket == "" {
			return errors.New("U022").
				WithDetail("storage.bucket is required for the s3 backend")
		}
	default:
		return errors.New("U022").
			WithDetail("unknown storage.backend " + strconv.Quote(c.Storage.Backend)).
			WithSuggestion(`Use "file" or "s3"`)
	}
	return nil
}

// CodecOptions returns the codec options configured in the file.
func (c *Config) CodecOptions() []urlcodec.Option {
	opts := []urlcodec.Option{urlcodec.WithDelimiter(c.Codec.Delimiter)}
	if c.Codec.ListSeparator != "" {
		opts = append(opts, urlcodec.WithListSeparator(c.Codec.ListSeparator))
	}
	return opts
}

// DebounceDuration parses Server.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Server.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Newf(errors.CategoryConfig, "negative duration %s", c.Server.Debounce)
	}
	return d, nil
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	scheme := "http"
	if c.Server.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + c.Address()
}

// CertPath returns the absolute path to the certificate cache.
func (c *Config) CertPath() string {
	return c.resolve(c.Server.CertDir)
}

// StoragePath returns the absolute path to the file storage root.
func (c *Config) StoragePath() string {
	return c.resolve(c.Storage.Dir)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("U020").
				WithDetail("No urlkit config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// syntaxPosition finds the 1-based line and column a decode error points
// at. YAML errors only carry a line.
func syntaxPosition(data []byte, err error) (line, col int, ok bool) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		offset    int64
	)
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		m := yamlLine.FindStringSubmatch(err.Error())
		if m == nil {
			return 0, 0, false
		}
		n, _ := strconv.Atoi(m[1])
		return n, 0, n > 0
	}

	offset = min(max(offset, 0), int64(len(data)))
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = max(len(before)-(bytes.LastIndexByte(before, '\n')+1), 1)
	return line, col, true
}
