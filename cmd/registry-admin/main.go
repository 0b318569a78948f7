package main

import (
	"github.com/healthhive/registry/cmd/registry-admin/command"
)

func main() {
	command.Execute()
}
