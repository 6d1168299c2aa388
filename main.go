package main

import (
	"os"

	"github.com/zalando-stups/stups-auth-adapter/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
