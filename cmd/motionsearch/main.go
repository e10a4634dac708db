package main

import "github.com/gowvp/motionsearch/internal/cli"

// 编译时注入
var buildVersion = "0.0.1"

func main() {
	cli.Execute(buildVersion)
}
