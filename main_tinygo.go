//go:build tinygo

package main

import (
	"rtx/app"
	"rtx/hal"
)

func main() {
	app.Run(hal.New())
}
