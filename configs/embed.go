// Package configs embeds the shipped study descriptors and sample pipeline so
// the binary runs without a checkout of this directory.
package configs

import "embed"

// Studies holds studies/*.yaml, one descriptor per study.
//
//go:embed studies/*.yaml
var Studies embed.FS

// Pipelines holds pipelines/*.yaml.
//
//go:embed pipelines/*.yaml
var Pipelines embed.FS
