package main

import "github.com/bradford-hamilton/uxngo/cmd"

func main() {
	cmd.Execute()
}
