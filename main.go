package main

import "cancha-cli/cmd"

func main() {
	cmd.Execute()
}
