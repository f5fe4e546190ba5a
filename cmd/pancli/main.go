package main

import (
	"github.com/zf1976/pancli/cmd/pancli/cmd"
)

func main() {
	cmd.Execute()
}
