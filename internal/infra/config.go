package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is sent with profile and content requests.
	DefaultUserAgent = "tuli-go/1.0 (+https://tuli.ink)"

	// DefaultProfilesURL is the production user-profile endpoint.
	DefaultProfilesURL = "https://tuli.ink/api/users"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Network struct {
		RPCURL          string `yaml:"rpc_url"`
		ChainID         int64  `yaml:"chain_id"`
		MediaAddress    string `yaml:"media_address"`
		MarketAddress   string `yaml:"market_address"`
		AddressBookPath string `yaml:"address_book_path"`
		DomainChainID   int64  `yaml:"domain_chain_id"` // 0 = derived from chain_id
	} `yaml:"network"`

	Signer struct {
		PrivateKey string `yaml:"private_key"` // empty = read-only
	} `yaml:"signer"`

	Profiles struct {
		URL            string  `yaml:"url"`
		TimeoutSec     int     `yaml:"timeout_sec"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
	} `yaml:"profiles"`

	Content struct {
		TimeoutSec int   `yaml:"timeout_sec"`
		MaxBytes   int64 `yaml:"max_bytes"`
	} `yaml:"content"`

	Storage struct {
		Path string `yaml:"path"` // empty = no persistence
	} `yaml:"storage"`

	Preview struct {
		Dir  string `yaml:"dir"` // empty = no thumbnails
		Size int    `yaml:"size"`
	} `yaml:"preview"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	// 보안 우선 - 환경 변수 오버라이드 지원
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Profiles.URL == "" {
		c.Profiles.URL = DefaultProfilesURL
	}
	if c.Profiles.TimeoutSec == 0 {
		c.Profiles.TimeoutSec = 10
	}
	if c.Profiles.RequestsPerSec == 0 {
		c.Profiles.RequestsPerSec = 5
	}
	if c.Content.TimeoutSec == 0 {
		c.Content.TimeoutSec = 30
	}
	if c.Preview.Size == 0 {
		c.Preview.Size = 256
	}
	if c.Logging.File == "" {
		c.Logging.File = "logs/tuli.log"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Network.RPCURL == "" {
		return fmt.Errorf("network.rpc_url is required")
	}
	if !hasAnyPrefix(c.Network.RPCURL, "http://", "https://", "ws://", "wss://") && !strings.HasSuffix(c.Network.RPCURL, ".ipc") {
		return fmt.Errorf("invalid RPC URL: %s", c.Network.RPCURL)
	}
	if c.Network.ChainID <= 0 {
		return fmt.Errorf("network.chain_id must be positive")
	}
	if (c.Network.MediaAddress == "") != (c.Network.MarketAddress == "") {
		return fmt.Errorf("network.media_address and network.market_address must both be set or both be empty")
	}

	if !hasAnyPrefix(c.Profiles.URL, "https://", "http://") {
		return fmt.Errorf("invalid profiles URL: %s", c.Profiles.URL)
	}
	if c.Profiles.TimeoutSec < 0 || c.Content.TimeoutSec < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Profiles.RequestsPerSec < 0 {
		return fmt.Errorf("profiles.requests_per_sec must not be negative")
	}
	if c.Content.MaxBytes < 0 {
		return fmt.Errorf("content.max_bytes must not be negative")
	}
	if c.Preview.Size < 0 {
		return fmt.Errorf("preview.size must not be negative")
	}

	return nil
}

// ReadOnly reports whether no signing key is configured.
func (c *Config) ReadOnly() bool {
	return c.Signer.PrivateKey == ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("TULI_RPC_URL"); url != "" {
		cfg.Network.RPCURL = url
	}
	if id := os.Getenv("TULI_CHAIN_ID"); id != "" {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			cfg.Network.ChainID = n
		}
	}
	if key := os.Getenv("TULI_PRIVATE_KEY"); key != "" {
		cfg.Signer.PrivateKey = key
	}
	if addr := os.Getenv("TULI_MEDIA_ADDRESS"); addr != "" {
		cfg.Network.MediaAddress = addr
	}
	if addr := os.Getenv("TULI_MARKET_ADDRESS"); addr != "" {
		cfg.Network.MarketAddress = addr
	}
	if url := os.Getenv("TULI_PROFILES_URL"); url != "" {
		cfg.Profiles.URL = url
	}
}
