package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLOUDCLEANER_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

//go:embed embedded/profiles/*.toml
var profileFS embed.FS

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// LoadOptions controls which layers Load reads.
type LoadOptions struct {
	// Platform selects the embedded profile. Empty means the running host.
	Platform core.Platform

	// ConfigFile overrides the user file location. An explicitly named
	// file must exist; the default location is optional.
	ConfigFile string

	SkipUserFile bool
	SkipEnv      bool
}

// Load builds the configuration from all layers, appends the [extra]
// rules to the profile, fills defaults and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	platform := opts.Platform
	if platform == "" {
		platform = core.DetectPlatform()
	}

	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, ccerrors.Wrap(err, ccerrors.ErrConfigLoad, "failed to load embedded defaults")
	}

	profileBytes, err := embeddedProfile(platform)
	if err != nil {
		return nil, err
	}
	if err := k.Load(&rawBytesProvider{bytes: profileBytes}, toml.Parser()); err != nil {
		return nil, ccerrors.Wrapf(err, ccerrors.ErrConfigLoad, "failed to load %s profile", platform)
	}

	if !opts.SkipUserFile {
		path := opts.ConfigFile
		explicit := path != ""
		if !explicit {
			path = DefaultConfigFile()
		}
		if _, statErr := os.Stat(path); statErr == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, ccerrors.Wrapf(err, ccerrors.ErrConfigLoad, "failed to load config from %s", path).
					WithDetail("path", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded user config")
		} else if explicit {
			return nil, ccerrors.Wrapf(statErr, ccerrors.ErrConfigLoad, "config file %s not readable", path).
				WithDetail("path", path)
		}
	}

	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, ccerrors.Wrap(err, ccerrors.ErrConfigLoad, "failed to load env vars")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, ccerrors.Wrap(err, ccerrors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	postProcess(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("platform", cfg.Profile.Platform).
		Int("groups", len(cfg.Profile.Groups)).
		Int("neverDelete", len(cfg.Profile.NeverDelete)).
		Int("workers", cfg.Settings.Workers).
		Msg("Configuration loaded")

	return &cfg, nil
}

// LoadProfile returns the embedded profile for platform with no user or
// environment layers applied.
func LoadProfile(platform core.Platform) (Profile, error) {
	cfg, err := Load(LoadOptions{Platform: platform, SkipUserFile: true, SkipEnv: true})
	if err != nil {
		return Profile{}, err
	}
	return cfg.Profile, nil
}

func embeddedProfile(platform core.Platform) ([]byte, error) {
	b, err := profileFS.ReadFile(fmt.Sprintf("embedded/profiles/%s.toml", platform))
	if err != nil {
		logger := logging.GetLogger("config")
		logger.Warn().Str("platform", platform.String()).Msg("No profile for platform, using default")
		b, err = profileFS.ReadFile(fmt.Sprintf("embedded/profiles/%s.toml", core.DefaultPlatform))
		if err != nil {
			return nil, ccerrors.Wrap(err, ccerrors.ErrConfigLoad, "default profile missing")
		}
	}
	return b, nil
}

func postProcess(cfg *Config) {
	p := &cfg.Profile
	p.NeverDelete = append(p.NeverDelete, cfg.Extra.NeverDelete...)
	p.RequireConfirmation = append(p.RequireConfirmation, cfg.Extra.RequireConfirmation...)
	p.Groups = append(p.Groups, cfg.Extra.Groups...)

	for i := range p.Groups {
		g := &p.Groups[i]
		if g.RiskLevel == "" {
			g.RiskLevel = RiskLow
		}
		g.RiskLevel = strings.ToLower(g.RiskLevel)
		if g.Category == "" {
			g.Category = g.Name
		}
	}

	s := &cfg.Settings
	if s.Workers == 0 {
		s.Workers = DefaultWorkers()
	}
	if s.HistoryFile == "" {
		s.HistoryFile = defaultHistoryFile()
	}
	if s.ExclusionsFile == "" {
		s.ExclusionsFile = defaultExclusionsFile()
	}
	if s.AuditDir == "" {
		s.AuditDir = defaultAuditDir()
	}
}

// Validate checks the loaded configuration for values the pipeline
// cannot run with.
func Validate(cfg *Config) error {
	if cfg.Settings.Workers < 0 {
		return ccerrors.Newf(ccerrors.ErrConfigInvalid, "workers must be positive, got %d", cfg.Settings.Workers)
	}
	if cfg.Profile.Platform == "" {
		return ccerrors.New(ccerrors.ErrConfigInvalid, "profile has no platform")
	}
	if len(cfg.Profile.NeverDelete) == 0 {
		return ccerrors.New(ccerrors.ErrConfigInvalid, "profile has no never-delete rules")
	}

	seen := make(map[string]bool, len(cfg.Profile.Groups))
	for i, g := range cfg.Profile.Groups {
		if g.Name == "" {
			return ccerrors.Newf(ccerrors.ErrConfigInvalid, "scan group %d has no name", i)
		}
		if seen[g.Name] {
			return ccerrors.Newf(ccerrors.ErrConfigInvalid, "duplicate scan group %q", g.Name).
				WithDetail("group", g.Name)
		}
		seen[g.Name] = true
		if len(g.Paths) == 0 {
			return ccerrors.Newf(ccerrors.ErrConfigInvalid, "scan group %q has no paths", g.Name).
				WithDetail("group", g.Name)
		}
		switch g.RiskLevel {
		case RiskLow, RiskMedium, RiskHigh:
		default:
			return ccerrors.Newf(ccerrors.ErrConfigInvalid, "scan group %q: invalid risk level %q", g.Name, g.RiskLevel).
				WithDetail("group", g.Name)
		}
	}
	return nil
}
