// Package config holds the runtime configuration for linkscan: CLI flag
// values, defaults, validation, and the optional .linkscan YAML file with
// per-site crawl overrides.
//
// Configuration flows through the application by dependency injection.
// There is no global state; the cmd layer builds one Config per run and
// hands it to the pipeline.
package config
