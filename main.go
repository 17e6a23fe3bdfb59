package main

import (
	"hintdns/cmd"
)

func main() {
	cmd.Execute()
}
