package main

import "decksync/cmd/decksync/cmd"

func main() {
	cmd.Execute()
}
