package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Color helpers adapted from the pack's CIE CLI ui package: pre-configured
// color.Color instances that respect --no-color / NO_COLOR.
var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

func setColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

func printSuccess(msg string) { _, _ = green.Println("✓ " + msg) }
func printWarning(msg string) { _, _ = yellow.Println("⚠ " + msg) }
func printError(msg string)   { _, _ = red.Println("✗ " + msg) }
func printInfo(msg string)    { _, _ = cyan.Println("ℹ " + msg) }

func printHeader(text string) {
	_, _ = bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}
