// Package config provides configuration loading for the ldseries tool.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML file (ldseries.yaml or configs/ldseries.yaml, or an explicit path)
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables use the LDS_ prefix and the nested struct name:
//
//	LDS_SERIES_STRIDE=10
//	LDS_SERIES_START_TIME=2.5
//	LDS_PATHS_BASE_DIR=/data/shear_zone
//	LDS_PATHS_DIR_NAME=B7_V1
//	LDS_LOGGING_LEVEL=debug
//
// # Directory Convention
//
// Unless an explicit file is given, the series is read from
//
//	base_dir/dir_name/load_deflection/load_deflection.csv
//
// where base_dir defaults to ~/simdb/data/shear_zone.
//
// Every loaded configuration is validated with go-playground/validator
// struct tags before it is returned.
package config
