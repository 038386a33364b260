package main

import "github.com/fulmenhq/resgen/cmd"

func main() {
	cmd.Execute()
}
