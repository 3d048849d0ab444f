// Package config provides configuration loading and the filesystem layout for
// the DataCo supply-chain batch tools.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//  1. Default values (Default)
//  2. A YAML file (explicit path, or dataco.yaml / configs/dataco.yaml)
//  3. Environment variables prefixed DATACO_
//
// Examples:
//
//	DATACO_LOGGING_LEVEL=debug
//	DATACO_PIPELINE_ENCODING=utf-8
//	DATACO_FEATURES_FEATURE_COLUMNS=sales,order_item_quantity
//	DATACO_CHARTS_DPI=300
//
// The merged configuration is validated with struct tags before use.
//
// # Path Management
//
// Paths resolves every input and output location below a base directory:
//
//	paths, err := config.GetPaths(cfg.Paths.BaseDir)
//	chart := paths.GetChartPath("sales_by_region", "png")
package config
