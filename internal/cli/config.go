package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

// fileConfig is the optional TOML config file. Keys share their names
// with the matching long flags, so every value is a flag default;
// flags set on the command line always win.
//
// Example:
//
//	kmer-length = 20
//	graph = "succinct"
//	canonical = true
//	parallel = 8
//	anno-type = "column"
//	addr = ":5555"
type fileConfig struct {
	KmerLength int     `toml:"kmer-length"`
	Graph      string  `toml:"graph"`
	Canonical  bool    `toml:"canonical"`
	Parallel   int     `toml:"parallel"`
	BloomFPP   float64 `toml:"bloom-fpp"`
	AnnoType   string  `toml:"anno-type"`
	Addr       string  `toml:"addr"`

	md toml.MetaData
}

// defaultConfigPath returns ~/.config/seqgraph/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location
// when path is empty. A missing file at the default location yields an
// empty config; a missing explicit path is an error.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return &fileConfig{}, nil
		}
		path = p
	}

	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "loading config %s", path)
	}
	cfg.md = md
	return &cfg, nil
}

// isSet reports whether the config file defined the given key.
func (f *fileConfig) isSet(key string) bool {
	return f != nil && f.md.IsDefined(key)
}

// apply overlays config values onto flags the user left untouched.
// Each map entry pairs a key (same spelling as the long flag) with the
// assignment to run when the config supplies that key.
func (f *fileConfig) apply(cmd *cobra.Command, assign map[string]func()) {
	for key, set := range assign {
		if f.isSet(key) && !cmd.Flags().Changed(key) {
			set()
		}
	}
}
