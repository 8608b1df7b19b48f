package main

import "github.com/vietddude/goodnews/internal/cli"

func main() {
	cli.Execute()
}
