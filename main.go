package main

import "github.com/iksnae/lawchat/cmd"

func main() {
	cmd.Execute()
}
