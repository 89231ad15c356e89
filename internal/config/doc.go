// Package config holds runtime configuration: defaults, the optional YAML
// file, CLI flag overrides, and validation.
//
// With no file and no flags the defaults reproduce the classic behaviour:
// read "avg_sizes" and "avg_ssims" from the working directory, print both
// averaged ladders, write nothing else.
//
// Precedence: defaults < YAML file (-config) < explicit flags.
//
// Watch(ctx, paths, onChange) uses fsnotify to re-run the analysis whenever
// one of the input files is rewritten.
package config
