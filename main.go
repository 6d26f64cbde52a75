package main

import "legacy-importer/cmd"

func main() {
	cmd.Execute()
}
