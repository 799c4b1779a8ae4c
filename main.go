package main

import "github.com/rvh-io/hearsay/cmd"

func main() {
	cmd.Execute()
}
