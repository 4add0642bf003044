// Copyright 2023 The ModKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runtime implements the core facilities shared by the modkit
// host and the modkit command: application configuration parsing and the
// packages below it (codec, codegen, dispatch, weight, metadata, metrics).
package runtime

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Keys of the application section in a config file. Either spelling is
// accepted, but not both at once.
const (
	appKey      = "github.com/modkit/modkit"
	shortAppKey = "modkit"
)

// AppConfig holds the parsed configuration of a modkit application: the
// application section plus the raw TOML text of every other section, keyed
// by section name. Module sections are parsed on demand with
// ParseConfigSection when a module is installed.
type AppConfig struct {
	// Name is the application name. If the config does not set one, it
	// defaults to the config file's base name.
	Name string

	// Sections maps section keys (e.g. module full names) to the raw TOML
	// contents of the section.
	Sections map[string]string
}

// ParseConfig parses input, the contents of the TOML config file named file,
// into an AppConfig. Section contents are kept as raw TOML and handed to
// sectionValidator(key, contents); modules re-parse their own sections when
// they are installed.
func ParseConfig(file, input string, sectionValidator func(string, string) error) (*AppConfig, error) {
	sections, err := splitSections(input)
	if err != nil {
		return nil, err
	}
	config := &AppConfig{Sections: sections}
	if err := config.applyAppSection(file); err != nil {
		return nil, err
	}
	for key, val := range sections {
		if err := sectionValidator(key, val); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// splitSections decodes input just enough to find its top-level sections and
// returns each section re-encoded as standalone TOML.
func splitSections(input string) (map[string]string, error) {
	var raw map[string]toml.Primitive
	if _, err := toml.Decode(input, &raw); err != nil {
		return nil, err
	}
	sections := make(map[string]string, len(raw))
	for key, prim := range raw {
		var text strings.Builder
		if err := toml.NewEncoder(&text).Encode(prim); err != nil {
			return nil, fmt.Errorf("re-encoding section %q: %w", key, err)
		}
		sections[key] = text.String()
	}
	return sections, nil
}

// applyAppSection fills in the AppConfig fields from the application section,
// defaulting the application name to the config file's base name.
func (c *AppConfig) applyAppSection(file string) error {
	var app struct {
		Name string
	}
	if err := ParseConfigSection(appKey, shortAppKey, c.Sections, &app); err != nil {
		return err
	}
	c.Name = app.Name
	if c.Name == "" && file != "" {
		base := filepath.Base(file)
		c.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return nil
}

// ParseConfigSection parses the section stored under key into dst. When
// shortKey is not empty the section may be stored under either key, but
// supplying both is an error. A missing section leaves dst unchanged and
// returns nil.
//
// Keys in the section that dst does not declare are rejected, and if dst
// implements interface{ Validate() error } the parsed value is validated.
func ParseConfigSection(key, shortKey string, sections map[string]string, dst any) error {
	section, ok := sections[key]
	if shortKey != "" {
		if short, shortOk := sections[shortKey]; shortOk {
			if ok {
				return fmt.Errorf("conflicting sections %q and %q", shortKey, key)
			}
			key, section, ok = shortKey, short, true
		}
	}
	if !ok {
		return nil
	}

	md, err := toml.Decode(section, dst)
	if err != nil {
		return err
	}
	if unknown := md.Undecoded(); len(unknown) != 0 {
		return fmt.Errorf("section %q has unknown keys %v", key, unknown)
	}
	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
	}
	return nil
}
