package main

import "github.com/jjenkins/irisplus/cmd"

func main() {
	cmd.Execute()
}
