// Package config loads the node configuration.
//
// Values come from three layers, later ones winning: compiled-in defaults
// that describe the reference board (pins, ADC scale, loop cadence), an
// optional YAML file, and GRAYLOGIC_NODE_* environment variables. A
// missing file is not an error, so a bare binary boots with the defaults.
//
// Keep the network passphrase and broker credentials in the environment
// rather than the file.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
