// Package config provides the configuration for a11ybus.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← A11YBUS_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/a11ybus/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Configuration Files
//
//	# ~/.config/a11ybus/config.toml
//	include = ["shared.toml"]
//
//	[log]
//	level = "debug"
//
//	[filter]
//	keys = ["Object:StateChanged", "Focus:"]
//	script = "~/.config/a11ybus/filter.lua"
//
//	[dedup]
//	enabled = true
//	window = "500ms"
//
//	[output]
//	format = "json"
//
// # Error Handling
//
//   - *loader.ParseError: a file is not valid TOML
//   - ErrUnknownSetting: a file or variable names a setting that does not exist
//   - ErrValidationFailed: a value is out of range; matched by *ValidationError
package config
