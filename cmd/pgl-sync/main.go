package main

import (
	"pixelgardenlabs.io/pgl-sync/cmd"
)

func main() {
	cmd.Execute()
}
