package server

import (
	"fmt"
	"os"
	"time"

	"github.com/cjquines/cfish/internal/fish"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rules  *RulesSettings `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	MaxRooms       int    `hcl:"max_rooms,optional"`
	MaxMessageSize int64  `hcl:"max_message_size,optional"`
	PingPeriod     string `hcl:"ping_period,optional"`
	Seed           *int64 `hcl:"seed,optional"`
}

// RulesSettings holds the rules new rooms start with. Values use the same
// names as the wire format, e.g. bluff = "yes".
type RulesSettings struct {
	NumPlayers int    `hcl:"num_players,optional"`
	Bluff      string `hcl:"bluff,optional"`
	Declare    string `hcl:"declare,optional"`
	HandSize   string `hcl:"hand_size,optional"`
	Log        string `hcl:"log,optional"`
}

const (
	defaultAddress        = "localhost"
	defaultPort           = 8080
	defaultLogLevel       = "info"
	defaultMaxRooms       = 256
	defaultMaxMessageSize = 64 * 1024
	defaultPingPeriod     = "54s"
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.MaxRooms == 0 {
		c.Server.MaxRooms = defaultMaxRooms
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = defaultMaxMessageSize
	}
	if c.Server.PingPeriod == "" {
		c.Server.PingPeriod = defaultPingPeriod
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxRooms < 1 {
		return fmt.Errorf("max_rooms must be positive, got %d", c.Server.MaxRooms)
	}
	if c.Server.MaxMessageSize < 512 {
		return fmt.Errorf("max_message_size must be at least 512 bytes, got %d", c.Server.MaxMessageSize)
	}
	if _, err := c.PingInterval(); err != nil {
		return err
	}
	if _, err := c.DefaultRules(); err != nil {
		return err
	}
	return nil
}

// GetServerAddress returns the full listen address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// PingInterval parses ping_period
func (c *ServerConfig) PingInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.PingPeriod)
	if err != nil {
		return 0, fmt.Errorf("invalid ping_period %q: %w", c.Server.PingPeriod, err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("ping_period must be at least 1s, got %s", d)
	}
	return d, nil
}

// DefaultRules builds the rules for new rooms from the rules block
func (c *ServerConfig) DefaultRules() (fish.Rules, error) {
	rules := fish.DefaultRules()
	if c.Rules == nil {
		return rules, nil
	}
	if c.Rules.NumPlayers != 0 {
		rules.NumPlayers = c.Rules.NumPlayers
	}
	for key, value := range map[string]string{
		"bluff":     c.Rules.Bluff,
		"declare":   c.Rules.Declare,
		"hand_size": c.Rules.HandSize,
		"log":       c.Rules.Log,
	} {
		if value == "" {
			continue
		}
		if err := rules.Set(key, value); err != nil {
			return rules, fmt.Errorf("rules block: %w", err)
		}
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("rules block: %w", err)
	}
	return rules, nil
}
