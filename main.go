package main

import "negcheck/cmd"

func main() {
	cmd.Execute()
}
