package main

import (
	"github.com/healthhive/registry/api"
)

func main() {
	api.MainLoop()
}
