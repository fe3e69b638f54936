package main

import "github.com/theirongolddev/demandcast/cmd"

func main() {
	cmd.Execute()
}
