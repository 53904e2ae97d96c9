// Package main is entrypoint for the application
package main

import (
	"fmt"

	"callroom/cmd"
)

func main() {
	cmd.Run()
	fmt.Println("callroom end")
}
