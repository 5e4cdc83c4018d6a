package main

import "github.com/ahmetcoskunkizilkaya/crud-backend/cmd/server/cmd"

func main() {
	cmd.Execute()
}
