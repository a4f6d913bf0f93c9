package main

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/patchlore/internal/platform"
	"github.com/aretw0/patchlore/pkg/core"
)

// EnvPrefix namespaces environment overrides, e.g. PATCHLORE_THEMES_DIR.
const EnvPrefix = "PATCHLORE"

// settings is the merged view of flags, environment and config file.
type settings struct {
	Repo      string   `mapstructure:"repo" validate:"required"`
	Range     string   `mapstructure:"range"`
	Limit     int      `mapstructure:"limit" validate:"gte=0"`
	Paths     []string `mapstructure:"paths"`
	Theme     string   `mapstructure:"theme"`
	ThemesDir string   `mapstructure:"themes-dir"`
	Strict    bool     `mapstructure:"strict"`
	Version   string   `mapstructure:"version"`
	Format    string   `mapstructure:"format" validate:"oneof=markdown html json yaml csv"`
	Styles    bool     `mapstructure:"styles"`
	Pretty    bool     `mapstructure:"pretty"`
	Out       string   `mapstructure:"out"`
	Render    bool     `mapstructure:"render"`
	Seed      uint64   `mapstructure:"seed"`
}

var validate = validator.New()

// BindFlagsToViper binds all flags on a command to a Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// newViper layers config file, environment and flags for cmd.
// Flags set on the command line win, then environment, then the file.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := BindFlagsToViper(cmd, v); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	switch {
	case configFile != "":
		v.SetConfigFile(configFile)
	default:
		root, err := platform.FindRoot(".")
		if err != nil {
			return v, nil
		}
		v.SetConfigFile(filepath.Join(root, platform.ConfigFileName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (configFile == "" && errors.Is(err, iofs.ErrNotExist)) {
			return v, nil
		}
		return nil, errors.Wrapf(err, "failed to read config %s", v.ConfigFileUsed())
	}
	logger.Debug("config loaded")
	return v, nil
}

// loadSettings decodes and validates the merged configuration.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, errors.Wrap(err, "invalid configuration")
	}
	s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	if err := validate.Struct(s); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			fe := fields[0]
			return s, errors.WithHint(
				errors.Newf("validation failed: %s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag()),
				"check the flag, the PATCHLORE_ environment variable and "+platform.ConfigFileName)
		}
		return s, errors.Wrap(err, "validation failed")
	}
	return s, nil
}

// describe renders an error for the terminal, including the error code and
// any hints when the error is a SystemError.
func describe(err error) string {
	var se *core.SystemError
	if !errors.As(err, &se) {
		msg := "Error: " + err.Error()
		for _, h := range errors.GetAllHints(err) {
			msg += "\nHint: " + h
		}
		return msg
	}

	msg := fmt.Sprintf("Error [%s] %s", se.Code, se.Message)
	if orig, ok := se.Details["originalMessage"].(string); ok && orig != "" && orig != se.Message {
		msg += "\n  " + orig
	}
	if hints, ok := se.Details["hints"].([]string); ok {
		for _, h := range hints {
			msg += "\nHint: " + h
		}
	}
	if verbose {
		msg += "\n  id: " + se.ID
	}
	return msg
}
