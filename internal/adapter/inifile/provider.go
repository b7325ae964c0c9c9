// Package inifile reads the OpenWeatherMap API key from an INI-style
// configuration file such as:
//
//	[openweathermap]
//	api = 0123456789abcdef
package inifile

import (
	"log/slog"

	"github.com/couchcryptid/weather-bot/internal/domain"
	"gopkg.in/ini.v1"
)

// CredentialProvider looks up one key in one section of an INI file.
// The file is re-read on every call so key rotation needs no restart.
type CredentialProvider struct {
	path    string
	section string
	key     string
	logger  *slog.Logger
}

// NewCredentialProvider creates a provider for the given file, section and key.
func NewCredentialProvider(path, section, key string, logger *slog.Logger) *CredentialProvider {
	return &CredentialProvider{
		path:    path,
		section: section,
		key:     key,
		logger:  logger,
	}
}

// Credential returns the configured key, or domain.NoCredential when the
// file cannot be read or the section or key is missing. Key names match
// regardless of case; section names must match exactly.
func (p *CredentialProvider) Credential() domain.Credential {
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, p.path)
	if err != nil {
		p.logger.Debug("credential file unreadable", "path", p.path, "error", err)
		return domain.NoCredential
	}

	sec, err := f.GetSection(p.section)
	if err != nil {
		p.logger.Debug("credential section missing", "path", p.path, "section", p.section)
		return domain.NoCredential
	}

	key, err := sec.GetKey(p.key)
	if err != nil {
		p.logger.Debug("credential key missing", "path", p.path, "section", p.section, "key", p.key)
		return domain.NoCredential
	}

	return domain.NewCredential(key.String())
}
