package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/spf13/cobra"
)

var motionsCmd = &cobra.Command{
	Use:   "motions <camera_id>",
	Short: "列出摄像头一天内有运动的时刻",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bc, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		core, err := openMotionData(bc)
		if err != nil {
			return err
		}
		rows, cols := core.Grid()
		seconds, err := core.Motions(cmd.Context(), args[0], day, motiondata.CellRect{Width: cols, Height: rows})
		if err != nil {
			return err
		}
		return printMotions(cmd, seconds)
	},
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <camera_id>",
	Short: "按网格打印摄像头一天的运动次数",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bc, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		core, err := openMotionData(bc)
		if err != nil {
			return err
		}
		grid, err := core.Heatmap(cmd.Context(), args[0], day)
		if err != nil {
			return err
		}
		_, cols := core.Grid()
		return printGrid(cmd, grid, cols)
	},
}

func init() {
	for _, c := range []*cobra.Command{motionsCmd, heatmapCmd} {
		c.Flags().StringVarP(&day, "day", "d", "", "日期 YYYY-MM-DD (默认: 当天)")
	}
}

func printMotions(cmd *cobra.Command, seconds []int) error {
	out := cmd.OutOrStdout()
	if len(seconds) == 0 {
		fmt.Fprintln(out, "no motion found")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tSECOND")
	for _, s := range seconds {
		fmt.Fprintf(w, "%s\t%d\n", formatSecond(s), s)
	}
	return w.Flush()
}

func printGrid(cmd *cobra.Command, grid []int, cols int) error {
	if cols <= 0 {
		return fmt.Errorf("invalid grid columns %d", cols)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', tabwriter.AlignRight)
	for i := 0; i < len(grid); i += cols {
		row := grid[i:min(i+cols, len(grid))]
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	return w.Flush()
}

// formatSecond 当天第几秒转换为 15:04:05
func formatSecond(s int) string {
	return time.Date(0, 1, 1, 0, 0, s, 0, time.UTC).Format(time.TimeOnly)
}
