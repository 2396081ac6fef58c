package main

import "motionberry-cli/cmd"

func main() {
	cmd.Execute()
}
