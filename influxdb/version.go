// Copyright 2021 InfluxData, Inc. All rights reserved.
// Use of this source code is governed by MIT
// license that can be found in the LICENSE file.

package influxdb

import (
	"runtime"
)

// version defines current version
const version = "0.6.0"

// userAgent header value
const userAgent = "influxdb-go/" + version + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
