package main

import "jiahe-site/cli"

func main() {
	cli.Execute()
}
