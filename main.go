// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geocheck/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
