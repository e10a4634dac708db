package cli

import (
	"github.com/gowvp/motionsearch/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 http 服务",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bc, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context(), bc)
	},
}
