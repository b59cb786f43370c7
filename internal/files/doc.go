// Package files provides file system helpers: workbook discovery and
// atomic writes.
//
// Discovery lists the workbooks of the input directory, skipping the lock
// files spreadsheet editors leave behind while a workbook is open:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	latest, err := discovery.LatestWorkbook(paths.ExcelDir)
//
// Manager writes through a temp file and a rename, so the dashboard never
// reads a truncated document:
//
//	manager := files.NewManager(paths)
//	err := manager.WriteFileAtomic(filepath.Join(paths.SiteDataDir, "kpi_faturamento.json"), data)
package files
