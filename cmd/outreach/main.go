package main

import "github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/cli"

func main() {
	cli.Execute()
}
