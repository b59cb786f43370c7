package config

import (
	"time"

	"kpicli/pkg/contracts"
)

// Application constants
const (
	AppName    = "Painel Comercial KPI"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable (KPI_INPUT_CURRENT_FILE, ...)
	EnvPrefix      = "KPI"
	ConfigFileName = "kpi.yaml"
	DotEnvFile     = ".env"

	// Directories (relative to the base directory)
	DefaultExcelDir    = "excel"
	DefaultRawDataDir  = "dados"
	DefaultSiteDataDir = "site/dados"
	DefaultLogsDir     = "logs"

	DefaultWorkbook  = "PEDIDOS ONDA.xlsx"
	DefaultOrderType = "NORMAL"
	DefaultLogFile   = "kpi.log"
	DailyCSVFileName = "resumo_diario.csv"

	DefaultCommitMessage = "Atualiza dados do painel comercial"
	DefaultSyncTimeout   = 60 * time.Second
)

// Period policies
const (
	PolicyMonthStart = "month_start"
	PolicyFirstOrder = "first_order"
)

// Count modes
const (
	CountModeRows     = "rows"
	CountModeDistinct = "distinct"
)
