package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers can overwrite default_config.yaml before compiling to ship
// different defaults; files and flags still override it at runtime.
//
//go:embed default_config.yaml
var embeddedConfig []byte
