package main

import (
	"github.com/dealerops/ticketscope/cmd"
)

func main() {
	cmd.Execute()
}
