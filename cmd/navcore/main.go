package main

import "github.com/meshkit/navcore/cmd/navcore/cmd"

func main() {
	cmd.Execute()
}
