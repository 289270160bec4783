// Copyright © 2017 NAME HERE <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

var configTypeVal string

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config FILE",
	Short: "create a build settings file",
	Long: `Create a build settings file in YAML format, prefilled with default values.

If FILE is not provided, 'navcore.yml' is used`,
	Run: doConfig,
}

func init() {
	RootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configTypeVal, "type", "solo", "navmesh type, 'solo' or 'tiled'")
}

func doConfig(cmd *cobra.Command, args []string) {
	path := "navcore.yml"
	if len(args) >= 1 {
		path = args[0]
	}
	if ok, err := confirmIfExists(path,
		fmt.Sprintf("file name %s already exists, overwrite? [y/N]", path)); !ok {
		if err == nil {
			fmt.Println("aborted by user...")
		} else {
			fmt.Println("aborted,", err)
		}
		return
	}

	settings := defaultSettingsForType(configTypeVal)
	buf, err := yaml.Marshal(&settings)
	check(err)
	check(ioutil.WriteFile(path, buf, 0644))

	fmt.Printf("build settings written to '%s'\n", path)
}
