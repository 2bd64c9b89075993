package main

import "github.com/dotcommander/evalpanel/cmd"

func main() {
	cmd.Execute()
}
