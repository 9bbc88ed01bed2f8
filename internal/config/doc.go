// Package config provides configuration management for the labor force
// dashboard. It loads settings from several sources, validates them and
// exposes a typed Config to the rest of the application.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. A YAML file (LABOR_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Environment variables, after loading an optional .env file
//
// # Environment Variables
//
// All environment variables use the LABOR_ prefix followed by the section:
//
//	LABOR_SERVER_PORT=8080
//	LABOR_LOGGING_LEVEL=debug
//	LABOR_DATA_FILE=/srv/data/경제활동_통합.csv
//	LABOR_DATA_AGGREGATE_REGION=계
//	LABOR_DATA_WATCH=false
//	LABOR_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// GetPaths resolves the data file relative to the executable directory and
// then the working directory:
//
//	paths, err := config.GetPaths(cfg.Data)
//	table, err := loader.Load(ctx, paths.DataFile)
package config
