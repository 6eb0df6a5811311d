package main

import "kcalpace/cmd"

func main() {
	cmd.Execute()
}
