package main

import (
	_ "time/tzdata"

	"github.com/saadjs/nutrilog/cmd/nutrilog"
)

func main() {
	nutrilog.Execute()
}
