// Sarthi AI - certified dataset reports
package main

import "github.com/icancodefyi/sarthi-ai/internal/cli"

func main() {
	cli.Execute()
}
