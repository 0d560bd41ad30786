package main

import "github.com/notargets/schwarz/cmd"

func main() {
	cmd.Execute()
}
