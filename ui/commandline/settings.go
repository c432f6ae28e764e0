// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/sqmatrix/pkg/ops"
	"github.com/gomlx/sqmatrix/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// ParseConfigSettings parses the executor settings -- typically the contents of a flag set by the user.
// The settings are a list of "key=value" separated by "," or ";", e.g.: "mul=contiguous;band=64".
//
// An entry like "file:settings.txt" reads further settings from the file, where new-lines also
// separate settings and lines starting with "#" are comments.
//
// It returns the parsed configuration and the list of keys set, in order.
//
// Example usage:
//
//	func main() {
//		settings := commandline.CreateConfigSettingsFlag("")
//		flag.Parse()
//		config, _, err := commandline.ParseConfigSettings(*settings)
//		if err != nil { klog.Fatalf("%+v", err) }
//		fmt.Println(commandline.SprintConfig(config))
//		...
//	}
func ParseConfigSettings(settings string) (config ops.Config, keysSet []string, err error) {
	var options []string
	options, err = expandSettings(settings, options)
	if err != nil {
		return
	}
	for _, option := range options {
		key, _, _ := strings.Cut(option, "=")
		keysSet = append(keysSet, strings.TrimSpace(key))
	}
	config, err = ops.ParseConfig(strings.Join(options, ","))
	return
}

func expandSettings(settings string, options []string) ([]string, error) {
	for _, setting := range strings.FieldsFunc(settings, func(r rune) bool { return r == ',' || r == ';' }) {
		setting = strings.TrimSpace(setting)
		if setting == "" {
			continue
		}
		if !strings.HasPrefix(setting, "file:") {
			options = append(options, setting)
			continue
		}
		filePath, err := fsutil.ReplaceTilde(strings.TrimPrefix(setting, "file:"))
		if err != nil {
			return nil, err
		}
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read settings from file %q", filePath)
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if strings.Contains(line, "file:") {
				return nil, errors.Errorf("settings file %q can't include other files, got %q", filePath, line)
			}
			options, err = expandSettings(line, options)
			if err != nil {
				return nil, err
			}
		}
	}
	return options, nil
}

// CreateConfigSettingsFlag creates a string flag with the given flagName (if empty it will be named
// "config") and with a description of the available settings and their default values.
//
// The flag should be created before the call to `flag.Parse()`.
func CreateConfigSettingsFlag(flagName string) *string {
	if flagName == "" {
		flagName = "config"
	}
	parts := []string{
		`Executor settings: a list of "key=value" separated by "," or ";". ` +
			`It can also be given an entry like "file:settings.txt", in which case the file is read, ` +
			`with new-lines working as separators and lines starting with "#" considered comments. ` +
			`Values from $` + ops.ConfigEnvVar + ` are ignored if this flag is set. Defaults:`,
	}
	for _, option := range strings.Split(ops.DefaultConfig().String(), ",") {
		key, value, _ := strings.Cut(option, "=")
		parts = append(parts, fmt.Sprintf("%q: default value is %s", key, value))
	}
	var settings string
	flag.StringVar(&settings, flagName, "", strings.Join(parts, "\n"))
	return &settings
}

// SprintConfig pretty-prints the configuration, one setting per line.
func SprintConfig(config ops.Config) string {
	var parts []string
	for _, option := range strings.Split(config.String(), ",") {
		key, value, _ := strings.Cut(option, "=")
		parts = append(parts, fmt.Sprintf("\t%q: %s", key, value))
	}
	return strings.Join(parts, "\n")
}
