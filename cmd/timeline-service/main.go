package main

import (
	"os"

	"github.com/formansean/ufo-timline/timelineservice"
)

func main() {
	if err := timelineservice.Run(); err != nil {
		os.Exit(1)
	}
}
