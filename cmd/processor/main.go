package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"claim-eval/internal/claims"
)

func main() {
	// stdout carries only the decision document
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	os.Exit(claims.Run(os.Stdin, os.Stdout))
}
