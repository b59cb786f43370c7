// Package config provides centralized configuration management for the KPI
// panel generator. It loads settings from several sources, validates them
// and resolves every directory the run touches.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from .env
//	2. YAML configuration file (kpi.yaml or KPI_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern KPI_<SECTION>_<KEY>:
//
//	KPI_PATHS_BASE_DIR=/srv/painel
//	KPI_INPUT_CURRENT_FILE="PEDIDOS ONDA.xlsx"
//	KPI_INPUT_PRIOR_FILE=PEDIDOS_2025.xlsx
//	KPI_PERIOD_POLICY=first_order
//	KPI_METRICS_COUNT_MODE=distinct
//	KPI_SYNC_ENABLED=true
//	KPI_LOGGING_LEVEL=debug
//
// # Example File
//
//	paths:
//	  base_dir: /srv/painel
//	input:
//	  current_file: PEDIDOS_2026.xlsx
//	  prior_file: PEDIDOS_2025.xlsx
//	period:
//	  policy: month_start
//	sync:
//	  enabled: true
//	  branch: main
//
// # Paths
//
// GetPaths resolves relative directories against the base directory, which
// defaults to the executable's directory so the tool behaves the same no
// matter where it is launched from.
package config
