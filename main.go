package main

import "lichee/lineage/cmd"

func main() {
	cmd.Execute()
}
