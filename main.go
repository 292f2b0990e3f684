package main

import "github.com/tunedinout/esfiddle/cmd"

func main() {
	cmd.Execute()
}
