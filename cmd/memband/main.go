package main

import (
	"memband/cmd/memband/commands"
	"memband/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
