package main

import "flights_backend/cmd/flightctl/commands"

func main() {
	commands.Execute()
}
