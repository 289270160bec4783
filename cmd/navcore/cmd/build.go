package cmd

import (
	"fmt"
	"os"

	"github.com/meshkit/navcore/recast"
	"github.com/meshkit/navcore/sample/solomesh"
	"github.com/meshkit/navcore/sample/tilemesh"
	"github.com/spf13/cobra"
)

var cfgVal, inputVal, typeVal string

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build OUTFILE",
	Short: "build navigation mesh from input geometry",
	Long: `Build a navigation mesh from input geometry in OBJ.
Build process is controlled by the provided build settings. Generated
navmesh is saved to OUTFILE in binary format, readable with navcore's
detour package.`,
	Args: cobra.ExactArgs(1),
	Run:  doBuild,
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&cfgVal, "config", "navcore.yml", "build settings")
	buildCmd.Flags().StringVar(&typeVal, "type", "solo", "navmesh type, 'solo' or 'tiled'")
	buildCmd.Flags().StringVar(&inputVal, "input", "", "input geometry OBJ file (required)")
}

func doBuild(cmd *cobra.Command, args []string) {
	outfile := args[0]

	if inputVal == "" {
		fmt.Println("error, --input is required")
		os.Exit(-1)
	}

	settings := defaultSettingsForType(typeVal)
	if err := fileExists(cfgVal); err == nil {
		check(unmarshalYAMLFile(cfgVal, &settings))
	}

	in, err := os.Open(inputVal)
	check(err)
	defer in.Close()

	ctx := recast.NewBuildContext(true)

	switch typeVal {
	case "solo":
		sm := solomesh.New(ctx)
		sm.SetSettings(settings)
		check(sm.LoadGeometry(in))
		nm, built := sm.Build()
		if !built {
			fmt.Println("error, could not build solo navmesh")
			os.Exit(-1)
		}
		check(nm.SaveToFile(outfile))
	case "tiled":
		tm := tilemesh.New(ctx)
		tm.SetSettings(settings)
		check(tm.LoadGeometry(in))
		nm, built := tm.Build()
		if !built {
			fmt.Println("error, could not build tiled navmesh")
			os.Exit(-1)
		}
		check(nm.SaveToFile(outfile))
	default:
		fmt.Printf("error, unknown navmesh type %q, expected 'solo' or 'tiled'\n", typeVal)
		os.Exit(-1)
	}

	fmt.Printf("navmesh written to '%s'\n", outfile)
}

func defaultSettingsForType(t string) recast.BuildSettings {
	if t == "tiled" {
		return tilemesh.DefaultSettings()
	}
	return solomesh.NewSettings()
}
