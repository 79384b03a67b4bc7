package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/careshift/tools/linters/nowinject"
)

func main() {
	singlechecker.Main(nowinject.Analyzer)
}
