// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package main is the entry point for the gitssues CLI.
package main

import (
	"github.com/similigh/gitssues/cmd/gitssues/commands"
)

func main() {
	commands.Execute()
}
