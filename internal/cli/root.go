// Package cli implementa o instituctl: tarefas de operação que rodam
// fora do servidor HTTP (migração, seed, varreduras manuais).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/app"
	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/institute-scheduler/internal/db"
)

var rootCmd = &cobra.Command{
	Use:   "instituctl",
	Short: "Operate the institute scheduler",
	Long: `instituctl runs maintenance tasks against the same database and
configuration as the API: schema migration, demo data, operator accounts and
one-off runs of the reminder and loyalty sweeps.`,
	SilenceUsage: true,
}

// Execute roda a CLI e sai com código 1 em caso de erro.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*config.Config, *gorm.DB) {
	cfg := config.Load()
	return cfg, dbpkg.NewDB(cfg)
}

func openApp() (*app.App, error) {
	cfg, db := openDB()
	return app.New(cfg, db)
}
