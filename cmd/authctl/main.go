// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command authctl is the operator CLI for the rankboard authentication store.
package main

import (
	"fmt"
	"os"

	"github.com/taibuivan/rankboard/internal/platform/constants"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (%s)", constants.AppVersion, constants.AppName)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
