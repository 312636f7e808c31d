package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// config holds the generator-wide defaults an optional sdtgen.toml project
// file supplies; CLI flags always take precedence over these.
type config struct {
	Output      string `toml:"output"`
	Compressed  bool   `toml:"compressed"`
	Context     int    `toml:"context"`
	DefaultCost int    `toml:"default_cost"`
}

// loadConfig searches the current directory then $HOME for sdtgen.toml,
// returning a zero config (not an error) when neither exists.
func loadConfig() (*config, error) {
	for _, dir := range configSearchDirs() {
		path := filepath.Join(dir, "sdtgen.toml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var c config
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return nil, err
		}
		return &c, nil
	}
	return &config{}, nil
}

func configSearchDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}
