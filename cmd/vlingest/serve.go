package main

import (
	"github.com/spf13/cobra"

	"vlingest/internal/webui"
)

const defaultDataFile = "output/combined_cleaned_data.csv"

func newServeCmd(g *globalOpts) *cobra.Command {
	var addr, dataFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the TimeDays chart over the combined CSV",
		Long: `Serves a home page and /time_days/, a bar chart of sample counts per
TimeDays value read from the combined CSV. Without --data-file the pipeline's
csv output path is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataFile == "" {
				dataFile = defaultDataFile
				if p, _, err := g.loadPipeline(); err == nil && p.Storage.Kind == "csv" && p.Storage.DB.DSN != "" {
					dataFile = p.Storage.DB.DSN
				}
			}
			s := webui.NewServer(webui.Config{Addr: addr, DataFile: dataFile})
			return s.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "combined CSV to chart")
	return cmd
}
