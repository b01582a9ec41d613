package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cityforge/cityforge/pkg/generate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cityforge",
		Short: "Procedural generator of synthetic CityGML building models",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(constructCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		cfgPath string
		opts    generate.Options
	)

	cmd := &cobra.Command{
		Use:   "generate [parameter-file]",
		Short: "Generate random building parameters and write them as XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(args[0], cfgPath, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "number", "n", 1000, "number of buildings to generate")
	cmd.Flags().Int64VarP(&opts.Seed, "seed", "s", 0, "random seed; identical seeds reproduce identical cities")
	cmd.Flags().BoolVar(&opts.Rotation, "rotation", false, "rotate buildings randomly instead of axis-aligned")
	cmd.Flags().BoolVar(&opts.Parts, "parts", true, "attach garages and alcoves")
	cmd.Flags().BoolVar(&opts.Streets, "streets", false, "generate the decorative road network")
	cmd.Flags().BoolVar(&opts.Vegetation, "vegetation", false, "turn some cells into parks")
	cmd.Flags().StringVar(&opts.CRS, "crs", "", "named regional coordinate offset")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "sampling configuration file (YAML)")
	return cmd
}

func constructCmd() *cobra.Command {
	var opts constructOptions

	cmd := &cobra.Command{
		Use:   "construct [parameter-file]",
		Short: "Construct CityGML models at all sixteen LODs from a parameter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConstruct(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "model", "output directory for the CityGML documents")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel assembly workers, 0 = all cores")
	cmd.Flags().StringSliceVar(&opts.points, "points", nil, "LOD points to write, e.g. 1.2,2.0 (default all)")
	cmd.Flags().BoolVar(&opts.solids, "solids", false, "also emit an aggregate solid per building")
	cmd.Flags().BoolVar(&opts.mintIDs, "gml-ids", false, "mint a gml:id for every polygon")
	cmd.Flags().BoolVar(&opts.parts, "parts", true, "include building parts")
	cmd.Flags().BoolVar(&opts.rotation, "rotation", true, "honor stored building rotations")
	cmd.Flags().BoolVar(&opts.streets, "streets", true, "write the street network if present")
	cmd.Flags().BoolVar(&opts.vegetation, "vegetation", true, "write parks if present")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [parameter-file]",
		Short: "Validate a parameter file without constructing geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}
