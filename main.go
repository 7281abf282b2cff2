package main

import "github.com/biovault/hdf5pkg/cmd"

func main() {
	cmd.Execute()
}
