package main

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"advance/emu/log"
)

type Config struct {
	General GeneralConfig `toml:"general"`
}

type GeneralConfig struct {
	// Path to a BIOS image, loaded at power up when set.
	BiosPath string `toml:"bios_path"`

	// Policy for unknown BIOS calls without a BIOS image: "ignore" or
	// "halt".
	SWIFallback string `toml:"swi_fallback"`
}

var ConfigDir string = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("advance")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})()

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the advance config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir, cfgFilename), &cfg)
	if err != nil {
		return Config{}
	}
	return cfg
}

// SaveConfig into the advance config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(ConfigDir, cfgFilename), buf, 0644)
}
