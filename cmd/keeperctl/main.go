package main

import (
	"os"

	"github.com/dmitrijs2005/jwtkeeper/internal/keeperctl"
)

func main() {
	os.Exit(keeperctl.Execute())
}
