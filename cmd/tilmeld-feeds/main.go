package main

import "github.com/hautrelief/tilmeld-feeds/internal/cli"

func main() {
	cli.Execute()
}
