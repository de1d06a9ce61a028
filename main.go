package main

import "github.com/kmodaudit/kmodaudit/cmd/kmodaudit"

func main() { kmodaudit.Execute() }
