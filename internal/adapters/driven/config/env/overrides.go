// Package env applies settings overrides from the process environment
// and an optional dotenv file.
package env

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// Ensure Overrides implements the interface.
var _ driven.SettingsOverrides = (*Overrides)(nil)

// DefaultDotenvFile is read from the working directory when present.
const DefaultDotenvFile = ".env"

// Overrides reads DOCTHEMES_* variables on top of the config file.
// Variables already set in the environment win over the dotenv file.
type Overrides struct {
	dotenvFiles []string
}

// NewOverrides creates overrides that first load the given dotenv files.
// Missing files are skipped.
func NewOverrides(dotenvFiles ...string) *Overrides {
	return &Overrides{dotenvFiles: dotenvFiles}
}

// Apply overwrites every field of settings whose variable is set.
func (o *Overrides) Apply(settings *domain.AppSettings) error {
	for _, file := range o.dotenvFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", file, err)
		}
		logger.Debug("Loaded environment from %s", file)
	}

	if err := env.Parse(settings); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
