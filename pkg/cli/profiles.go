package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/scrollseek/pkg/config"
)

var profilesCommand = &cli.Command{
	Name:      "profiles",
	Usage:     "Print the effective view profiles",
	ArgsUsage: "[view]...",
	Description: `Print the view profiles after merging the built-in defaults, the config
defaults and the per-view entries, as YAML.

Examples:
  scrollseek profiles
  scrollseek --config ./scrollseek.yaml profiles day`,
	Action: runProfiles,
}

func runProfiles(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var profiles map[string]config.Profile
	if c.NArg() == 0 {
		if profiles, err = cfg.Effective(); err != nil {
			return err
		}
	} else {
		profiles = make(map[string]config.Profile)
		for _, kind := range c.Args().Slice() {
			p, err := cfg.Profile(kind)
			if err != nil {
				return err
			}
			profiles[kind] = p
		}
	}

	data, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	_, err = c.App.Writer.Write(data)
	return err
}
