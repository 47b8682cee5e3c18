package main

import "github.com/trevmt/usagereport/cmd"

func main() {
	cmd.Execute()
}
