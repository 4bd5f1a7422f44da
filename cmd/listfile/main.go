/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/UbimoLTD/listfile/cmd/listfile/cmd"
)

func main() {
	cmd.Execute()
}
