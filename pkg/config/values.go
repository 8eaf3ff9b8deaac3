package config

import (
	"fmt"
	"strconv"
	"strings"
)

// invalidSetting records a value that could not be parsed. The setting keeps its
// default.
type invalidSetting struct {
	name  string
	value string
}

func (i invalidSetting) Error() string {
	return fmt.Sprintf("invalid value %q for %s, keeping the default", i.value, envName(i.name))
}

// envName returns the environment variable a flag is read from.
func envName(flagName string) string {
	return strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// switchValue is a boolean flag accepting on/off, yes/no, true/false and 1/0 in any
// case. Unknown words keep the default and are recorded on the settings.
type switchValue struct {
	name    string
	p       *bool
	invalid *[]invalidSetting
}

func (v *switchValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.FormatBool(*v.p)
}

func (v *switchValue) Set(s string) error {
	b, ok := parseSwitch(s)
	if !ok {
		*v.invalid = append(*v.invalid, invalidSetting{name: v.name, value: s})
		return nil
	}
	*v.p = b
	return nil
}

func (v *switchValue) IsBoolFlag() bool { return true }

// parseSwitch reads a boolean setting value and reports whether it was recognized.
func parseSwitch(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "on", "yes", "y":
		return true, true
	case "0", "f", "false", "off", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// levelValue is an integer flag that keeps its default on malformed input.
type levelValue struct {
	name    string
	p       *int
	invalid *[]invalidSetting
}

func (v *levelValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(*v.p)
}

func (v *levelValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		*v.invalid = append(*v.invalid, invalidSetting{name: v.name, value: s})
		return nil
	}
	*v.p = n
	return nil
}
