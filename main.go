package main

import "github.com/hpcfair/slurmplot/cmd"

func main() {
	cmd.Execute()
}
