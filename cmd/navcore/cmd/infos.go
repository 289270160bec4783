package cmd

import (
	"fmt"
	"os"

	"github.com/meshkit/navcore/detour"
	"github.com/spf13/cobra"
)

// infosCmd represents the infos command
var infosCmd = &cobra.Command{
	Use:   "infos NAVMESH",
	Short: "show infos about a navmesh",
	Long: `Read a navigation mesh from binary file, check the data
for consistency then print informations on standard output.`,
	Args: cobra.ExactArgs(1),
	Run:  doInfos,
}

func init() {
	RootCmd.AddCommand(infosCmd)
}

func doInfos(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	check(err)
	defer f.Close()

	mesh, err := detour.Decode(f)
	if err != nil {
		fmt.Println("error, could not decode navmesh:", err)
		os.Exit(-1)
	}

	fmt.Printf("max tiles:  %d\n", mesh.MaxTiles)
	fmt.Printf("tile width: %.2f\n", mesh.Params.TileWidth)
	fmt.Printf("tile height: %.2f\n", mesh.Params.TileHeight)
	fmt.Printf("max polys per tile: %d\n", mesh.Params.MaxPolys)

	var ntiles, npolys, nverts int32
	for i := int32(0); i < mesh.MaxTiles; i++ {
		tile := &mesh.Tiles[i]
		if tile.Header == nil {
			continue
		}
		ntiles++
		npolys += tile.Header.PolyCount
		nverts += tile.Header.VertCount
	}
	fmt.Printf("tiles in use: %d\n", ntiles)
	fmt.Printf("total polys:  %d\n", npolys)
	fmt.Printf("total verts:  %d\n", nverts)
	fmt.Printf("binary size:  %d bytes\n", mesh.Size())
}
