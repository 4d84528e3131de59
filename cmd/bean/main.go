package main

import "github.com/beanviz/bean/internal/cli"

func main() {
	cli.Execute()
}
