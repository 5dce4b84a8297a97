package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	CardsFile     string `hcl:"cards_file,optional"`
	Seed          int64  `hcl:"seed,optional"`
	RoomIdleMins  int    `hcl:"room_idle_mins,optional"`
	SweepInterval int    `hcl:"sweep_interval_mins,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "0.0.0.0",
			Port:     3000,
			LogLevel: "info",
		},
		Game: GameSettings{
			CardsFile:     "UK_Prime_Ministers.csv",
			RoomIdleMins:  120,
			SweepInterval: 5,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file, falling
// back to defaults when the file does not exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.CardsFile == "" {
		config.Game.CardsFile = defaults.Game.CardsFile
	}
	if config.Game.RoomIdleMins == 0 {
		config.Game.RoomIdleMins = defaults.Game.RoomIdleMins
	}
	if config.Game.SweepInterval == 0 {
		config.Game.SweepInterval = defaults.Game.SweepInterval
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.CardsFile == "" {
		return fmt.Errorf("cards_file must be set")
	}
	if c.Game.RoomIdleMins < 0 {
		return fmt.Errorf("room_idle_mins must not be negative")
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomIdleExpiry returns the idle duration after which a room is swept.
// Zero disables sweeping.
func (c *ServerConfig) RoomIdleExpiry() time.Duration {
	return time.Duration(c.Game.RoomIdleMins) * time.Minute
}

// SweepEvery returns how often the idle sweeper runs.
func (c *ServerConfig) SweepEvery() time.Duration {
	return time.Duration(c.Game.SweepInterval) * time.Minute
}
