// Package configs provides embedded configuration files for the bot.
package configs

import "embed"

// MenuFile is the name of the embedded menu definition
const MenuFile = "menu.yaml"

// EmbeddedConfigs exposes embedded configuration files for read-only access.
//
//go:embed *.yaml
var EmbeddedConfigs embed.FS
